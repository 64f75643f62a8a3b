package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/routes"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting Ecotainment API server", "env", cfg.GoEnv)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	db := config.GetDB()
	if err := config.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("database migration completed")

	ctx := context.Background()
	if err := initImageStorage(ctx, cfg); err != nil {
		logger.Error("failed to initialize image storage", "error", err)
		os.Exit(1)
	}

	publisher := services.InitEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err)
		}
	}()

	accounts := services.NewAccountService(db, services.NewTokenService(cfg), services.GetImageService())
	if admin, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("failed to provision admin account", "error", err)
		os.Exit(1)
	} else if admin != nil {
		logger.Info("admin account ready", "user_id", admin.ID)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

// initImageStorage selects S3 when a bucket is configured and falls back to local disk
func initImageStorage(ctx context.Context, cfg *config.Config) error {
	if cfg.UsesS3() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			return err
		}
		services.InitImageService(s3Service)
		return nil
	}

	utils.UploadDir = cfg.UploadDir
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}
	services.InitLocalImageService(cfg.UploadDir)
	return nil
}
