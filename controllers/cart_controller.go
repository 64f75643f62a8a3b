package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// AddToCartRequest represents the request body for adding a product to the cart
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartQuantityRequest represents the request body for changing a cart quantity
type UpdateCartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// FilterCartRequest selects cart lines by product
type FilterCartRequest struct {
	ProductIDs []uint `json:"product_ids" binding:"required,min=1"`
}

func cartService() *services.CartService {
	return services.NewCartService(config.GetDB(), services.GetImageService())
}

// GetCart handles GET /api/v1/cart
func GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	lines, err := cartService().List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Cart item")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Cart retrieved successfully.", lines)
}

// AddToCart handles POST /api/v1/cart - inserts the line or overwrites its quantity
func AddToCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	line, err := cartService().AddOrUpdate(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "Cart item")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Cart updated successfully.", line)
}

// UpdateCartQuantity handles PATCH /api/v1/cart/:id/quantity where id is the product id
func UpdateCartQuantity(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	productID, ok := paramID(c, "id", "Cart item")
	if !ok {
		return
	}

	var req UpdateCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	line, err := cartService().UpdateQuantity(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "Cart item")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Cart quantity updated successfully.", line)
}

// RemoveFromCart handles DELETE /api/v1/cart/:id where id is the product id
func RemoveFromCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	productID, ok := paramID(c, "id", "Cart item")
	if !ok {
		return
	}

	if err := cartService().Remove(c.Request.Context(), userID, productID); err != nil {
		respondServiceError(c, err, "Cart item")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Product removed from cart.", nil)
}

// FilterCartByProducts handles POST /api/v1/cart/filter-by-products
func FilterCartByProducts(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req FilterCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	lines, err := cartService().FilterByProducts(c.Request.Context(), userID, req.ProductIDs)
	if err != nil {
		respondServiceError(c, err, "Cart item")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Cart retrieved successfully.", lines)
}
