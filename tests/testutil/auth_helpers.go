package testutil

import (
	"strconv"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/models"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(user *models.User) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:   TestJWTIssuer,
			Subject:  strconv.FormatUint(uint64(user.ID), 10),
			Audience: []string{TestJWTAudience},
		},
		CustomClaims: &middleware.CustomClaims{
			Role:         user.Role,
			TokenVersion: user.TokenVersion,
		},
	}
}

// SetMockAuthContext sets up the context the auth middlewares would produce for user
func SetMockAuthContext(c *gin.Context, user *models.User) {
	c.Set(middleware.ContextUserID, user.ID)
	c.Set(middleware.ContextRole, user.Role)
	c.Set(middleware.ContextTokenVersion, user.TokenVersion)
	c.Set(middleware.ContextClaims, MockValidatedClaims(user))
	c.Set(middleware.ContextCurrentUser, user)
}

// MockAuthMiddleware authenticates every request as user
func MockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, user)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
