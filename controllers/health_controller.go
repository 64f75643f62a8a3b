package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// HealthCheck handles GET /api/v1/health
func HealthCheck(c *gin.Context) {
	utils.RespondSuccess(c, http.StatusOK, "Ecotainment API is running", nil)
}

// DatabaseStatus handles GET /api/v1/database/status - checks connectivity and lists tables
func DatabaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		utils.RespondError(c, http.StatusInternalServerError, "Database is not initialized.", nil)
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to get database instance.", nil)
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Database connection failed.", nil)
		return
	}

	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to query tables.", nil)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Database connected", gin.H{"tables": tables})
}
