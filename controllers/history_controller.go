package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// RecordSearchRequest represents the request body for saving a search
type RecordSearchRequest struct {
	SearchQuery string `json:"search_query" binding:"required,max=255"`
}

func historyService() *services.HistoryService {
	return services.NewHistoryService(config.GetDB(), services.GetImageService())
}

// GetPurchaseHistory handles GET /api/v1/purchase-history
func GetPurchaseHistory(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	entries, err := historyService().PurchaseHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Purchase history")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Purchase history retrieved successfully.", entries)
}

// GetSearchHistory handles GET /api/v1/search-history
func GetSearchHistory(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	entries, err := historyService().SearchHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Search history")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Search history retrieved successfully.", entries)
}

// RecordSearch handles POST /api/v1/search-history
func RecordSearch(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req RecordSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	entry, err := historyService().RecordSearch(c.Request.Context(), userID, req.SearchQuery)
	if err != nil {
		respondServiceError(c, err, "Search history")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Search recorded successfully.", entry)
}
