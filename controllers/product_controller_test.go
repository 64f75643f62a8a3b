package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRouter(user *models.User) *gin.Engine {
	router := routerAs(user)
	router.GET("/products", ListProducts)
	router.GET("/products/:id", GetProduct)
	router.POST("/admin/product", CreateProduct)
	router.PUT("/admin/product/:id", UpdateProduct)
	router.DELETE("/admin/product/:id", DeleteProduct)
	router.GET("/reviews/:productId", ListReviews)
	router.POST("/reviews/:productId", CreateReview)
	return router
}

func TestListProducts(t *testing.T) {
	env := setupControllerEnv(t)
	testutil.CreateProduct(t, env.db, "Steel Bottle", 12000, 40)
	testutil.CreateProduct(t, env.db, "Bamboo Toothbrush", 3000, 90)
	router := catalogRouter(nil)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedNames  []string
	}{
		{"all products", "", http.StatusOK, []string{"Bamboo Toothbrush", "Steel Bottle"}},
		{"search", "?search=bottle", http.StatusOK, []string{"Steel Bottle"}},
		{"price ascending", "?sort_by=price&sort_order=asc", http.StatusOK, []string{"Bamboo Toothbrush", "Steel Bottle"}},
		{"best sellers", "?sort_by=total_sales&sort_order=desc", http.StatusOK, []string{"Bamboo Toothbrush", "Steel Bottle"}},
		{"unknown sort column", "?sort_by=password", http.StatusUnprocessableEntity, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, httptestGet("/products"+tt.query))
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedNames == nil {
				return
			}
			var products []models.Product
			decodeData(t, w, &products)
			names := make([]string, len(products))
			for i, p := range products {
				names[i] = p.Name
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestGetProduct(t *testing.T) {
	env := setupControllerEnv(t)
	product := testutil.CreateProduct(t, env.db, "Beeswax Wrap", 15000, 0)
	router := catalogRouter(nil)

	w := serve(router, httptestGet(fmt.Sprintf("/products/%d", product.ID)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"average_rating":null`)

	w = serve(router, httptestGet("/products/9999"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found.", decodeEnvelope(t, w).Message)
}

func TestAdminProductLifecycle(t *testing.T) {
	env := setupControllerEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	router := catalogRouter(admin)

	w := serve(router, multipartRequest(t, http.MethodPost, "/admin/product", map[string]string{
		"name":     "Reusable Straw",
		"price":    "4500",
		"category": "kitchen",
	}, "image", "straw.png", []byte("png")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	decodeData(t, w, &product)
	assert.Equal(t, int64(4500), product.Price)
	require.NotNil(t, product.Image)
	assert.NotNil(t, product.ImageURL)

	w = serve(router, jsonRequest(t, http.MethodPost, "/admin/product", map[string]interface{}{"price": 100}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decodeEnvelope(t, w).Errors
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "category")

	path := fmt.Sprintf("/admin/product/%d", product.ID)
	w = serve(router, jsonRequest(t, http.MethodPut, path, map[string]interface{}{"price": 5000}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &product)
	assert.Equal(t, int64(5000), product.Price)
	assert.Equal(t, "Reusable Straw", product.Name)

	w = serve(router, jsonRequest(t, http.MethodDelete, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptestGet(fmt.Sprintf("/products/%d", product.ID)))
	assert.Equal(t, http.StatusNotFound, w.Code, "deleted products leave the catalog")

	var kept models.Product
	require.NoError(t, env.db.Unscoped().First(&kept, product.ID).Error, "deletion is soft")
}

func TestReviewEndpoints(t *testing.T) {
	env := setupControllerEnv(t)
	user := testutil.CreateUser(t, env.db, models.RoleUser)
	product := testutil.CreateProduct(t, env.db, "Soap", 100, 0)
	router := catalogRouter(user)
	path := fmt.Sprintf("/reviews/%d", product.ID)

	w := serve(router, jsonRequest(t, http.MethodPost, path, map[string]interface{}{"rating": 4, "comment": "gentle"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(router, jsonRequest(t, http.MethodPost, path, map[string]interface{}{"rating": 5}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(router, jsonRequest(t, http.MethodPost, path, map[string]interface{}{"rating": 6}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Errors, "rating")

	w = serve(router, jsonRequest(t, http.MethodPost, "/reviews/9999", map[string]interface{}{"rating": 3}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(catalogRouter(nil), httptestGet(path))
	require.Equal(t, http.StatusOK, w.Code)
	var summary services.ReviewSummary
	decodeData(t, w, &summary)
	assert.Equal(t, 1, summary.TotalReviews)
	require.NotNil(t, summary.AverageRating)
	assert.Equal(t, 4.0, *summary.AverageRating)
}
