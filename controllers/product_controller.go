package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// ListProductsQuery holds the catalog filters
type ListProductsQuery struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

// ProductRequest represents the product fields accepted by admin create and update.
// It binds from JSON or multipart form data; image is read separately.
type ProductRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,max=255"`
	Price       *int64  `json:"price" form:"price" binding:"omitempty,gte=0"`
	Category    *string `json:"category" form:"category" binding:"omitempty,max=255"`
	Description *string `json:"description" form:"description"`
}

func catalogService() *services.CatalogService {
	return services.NewCatalogService(config.GetDB(), services.GetImageService())
}

// ListProducts handles GET /api/v1/products
func ListProducts(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	products, err := catalogService().ListProducts(c.Request.Context(), services.ProductFilter{
		Search:    query.Search,
		Category:  query.Category,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Products retrieved successfully.", products)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}

	product, err := catalogService().GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Product retrieved successfully.", product)
}

// CreateProduct handles POST /api/v1/admin/product (admin only)
func CreateProduct(c *gin.Context) {
	input, ok := bindProductInput(c)
	if !ok {
		return
	}

	product, err := catalogService().CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Product created successfully.", product)
}

// UpdateProduct handles PUT /api/v1/admin/product/:id (admin only)
func UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	input, ok := bindProductInput(c)
	if !ok {
		return
	}

	product, err := catalogService().UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Product updated successfully.", product)
}

// DeleteProduct handles DELETE /api/v1/admin/product/:id (admin only)
func DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}

	if err := catalogService().DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Product deleted successfully.", nil)
}

func bindProductInput(c *gin.Context) (services.ProductInput, bool) {
	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindingError(c, err)
		return services.ProductInput{}, false
	}

	image, err := optionalFile(c, "image")
	if err != nil {
		respondInternalError(c, err)
		return services.ProductInput{}, false
	}

	return services.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Image:       image,
	}, true
}
