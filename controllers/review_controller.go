package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// CreateReviewRequest represents the request body for reviewing a product
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// ListReviews handles GET /api/v1/reviews/:productId
func ListReviews(c *gin.Context) {
	productID, ok := paramID(c, "productId", "Product")
	if !ok {
		return
	}

	summary, err := catalogService().ListReviews(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Reviews retrieved successfully.", summary)
}

// CreateReview handles POST /api/v1/reviews/:productId - one review per user and product
func CreateReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	productID, ok := paramID(c, "productId", "Product")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	review, err := catalogService().AddReview(c.Request.Context(), userID, productID, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Review added successfully.", review)
}
