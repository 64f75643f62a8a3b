package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/controllers"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// SetupRouter builds the HTTP router with every API route under /api/v1
func SetupRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	utils.RegisterJSONFieldNames()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		cors.New(corsConfig(cfg)),
	)

	router.GET("/metrics", middleware.MetricsHandler())

	authenticated := []gin.HandlerFunc{middleware.EnsureValidToken(cfg), middleware.RequireActiveUser()}
	adminOnly := append(append([]gin.HandlerFunc{}, authenticated...), middleware.RequireAdmin())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", controllers.Signup)
			auth.POST("/signin", controllers.Signin)

			account := auth.Group("", authenticated...)
			account.POST("/logout", controllers.Logout)
			account.GET("/user", controllers.GetAuthUser)
			account.PUT("/profile", controllers.UpdateProfile)
			account.GET("/address", controllers.ListAddresses)
			account.POST("/address", controllers.CreateAddress)
			account.PUT("/address/:addressId", controllers.UpdateAddress)
			account.DELETE("/address/:addressId", controllers.DeleteAddress)
		}

		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.GET("/reviews/:productId", controllers.ListReviews)
		v1.GET("/bank", controllers.ListBanks)
		v1.GET("/bank/:bankId", controllers.GetBank)

		user := v1.Group("", authenticated...)
		{
			user.POST("/reviews/:productId", controllers.CreateReview)

			user.GET("/cart", controllers.GetCart)
			user.POST("/cart", controllers.AddToCart)
			user.POST("/cart/filter-by-products", controllers.FilterCartByProducts)
			user.PATCH("/cart/:id/quantity", controllers.UpdateCartQuantity)
			user.DELETE("/cart/:id", controllers.RemoveFromCart)

			user.GET("/wishlist", controllers.GetWishlist)
			user.POST("/wishlist/toggle", controllers.ToggleWishlist)

			user.GET("/transactions", controllers.ListTransactions)
			user.POST("/transactions", controllers.CreateTransaction)
			user.GET("/transactions/:id", controllers.GetTransaction)
			user.PATCH("/transactions/:id/status", controllers.UpdateTransactionStatus)
			user.POST("/transactions/:id/proof", controllers.UploadPaymentProof)

			user.GET("/purchase-history", controllers.GetPurchaseHistory)
			user.GET("/search-history", controllers.GetSearchHistory)
			user.POST("/search-history", controllers.RecordSearch)
		}

		admin := v1.Group("/admin", adminOnly...)
		{
			admin.POST("/product", controllers.CreateProduct)
			admin.PUT("/product/:id", controllers.UpdateProduct)
			admin.DELETE("/product/:id", controllers.DeleteProduct)

			admin.GET("/transactions", controllers.ListAllTransactions)
			admin.PUT("/transactions/:id/status", controllers.UpdateTransactionStatus)

			admin.POST("/banks", controllers.CreateBank)
			admin.PUT("/banks/:bankId", controllers.UpdateBank)
			admin.DELETE("/banks/:bankId", controllers.DeleteBank)
		}
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}

	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}
