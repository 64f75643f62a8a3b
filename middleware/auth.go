package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"gorm.io/gorm"
)

// Context keys set by the auth middleware
const (
	ContextUserID       = "user_id"
	ContextRole         = "role"
	ContextTokenVersion = "token_version"
	ContextClaims       = "validated_claims"
	ContextCurrentUser  = "current_user"
)

// CustomClaims contains the application claims carried by our tokens.
type CustomClaims struct {
	Role         string `json:"role"`
	TokenVersion int    `json:"tv"`
}

// Validate rejects tokens without a role, satisfying validator.CustomClaims.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role == "" {
		return errors.New("role claim is required")
	}
	return nil
}

// NewValidator builds the HS256 validator for tokens issued by TokenService.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to set up the jwt validator: %v", err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Warn("rejected bearer token", "error", err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"message":"Unauthenticated."}`)); writeErr != nil {
			slog.Error("failed to write error response", "error", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		authenticated := false

		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				return
			}
			claims, ok := token.CustomClaims.(*CustomClaims)
			if !ok {
				return
			}
			userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
			if err != nil || userID == 0 {
				return
			}

			authenticated = true
			c.Request = r
			c.Set(ContextUserID, uint(userID))
			c.Set(ContextRole, claims.Role)
			c.Set(ContextTokenVersion, claims.TokenVersion)
			c.Set(ContextClaims, token)

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)

		if !authenticated {
			if !c.Writer.Written() {
				utils.AbortWithError(c, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			c.Abort()
		}
	}
}

// RequireActiveUser loads the caller's account and rejects tokens revoked by logout.
// It must run after EnsureValidToken.
func RequireActiveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		var user models.User
		if err := config.GetDB().WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logging.FromContext(c.Request.Context()).Error("failed to load current user", "user_id", userID, "error", err)
			}
			utils.AbortWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		if version, ok := c.Get(ContextTokenVersion); !ok || version.(int) != user.TokenVersion {
			utils.AbortWithError(c, http.StatusUnauthorized, "Token has been revoked.")
			return
		}

		// The stored role wins over the one baked into the token.
		c.Set(ContextRole, user.Role)
		c.Set(ContextCurrentUser, &user)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(),
			logging.FromContext(c.Request.Context()).With("user_id", user.ID)))

		c.Next()
	}
}

// RequireAdmin is a middleware that only lets admin identities through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentity(c)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		if !models.IsAdmin(identity) {
			utils.AbortWithError(c, http.StatusForbidden, "Forbidden. Admin access only.")
			return
		}

		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a number"}
	}

	return id, nil
}

// GetIdentity returns the authenticated caller for the current request
func GetIdentity(c *gin.Context) (models.Identity, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return models.Identity{}, err
	}

	role, _ := c.Get(ContextRole)
	roleStr, _ := role.(string)

	return models.Identity{UserID: userID, Role: roleStr}, nil
}

// GetCurrentUser returns the account loaded by RequireActiveUser
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	user, exists := c.Get(ContextCurrentUser)
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	u, ok := user.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}

	return u, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
