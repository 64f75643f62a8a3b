package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// ToggleWishlistRequest represents the request body for toggling a wishlist entry
type ToggleWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

func wishlistService() *services.WishlistService {
	return services.NewWishlistService(config.GetDB(), services.GetImageService())
}

// GetWishlist handles GET /api/v1/wishlist
func GetWishlist(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	entries, err := wishlistService().List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Wishlist")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Wishlist retrieved successfully.", entries)
}

// ToggleWishlist handles POST /api/v1/wishlist/toggle - saves or unsaves a product
func ToggleWishlist(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req ToggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	added, entry, err := wishlistService().Toggle(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	if !added {
		utils.RespondSuccess(c, http.StatusOK, "Product removed from wishlist.", gin.H{"status": "removed"})
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Product added to wishlist.", gin.H{"status": "added", "wishlist": entry})
}
