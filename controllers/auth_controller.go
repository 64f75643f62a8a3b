package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Email       *string `json:"email" form:"email" binding:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" form:"phone_number" binding:"omitempty,max=50"`
	Username    string  `json:"username" form:"username" binding:"omitempty,max=255"`
	Password    string  `json:"password" form:"password" binding:"required,min=6"`
}

// SigninRequest represents the request body for signing in
type SigninRequest struct {
	Email       *string `json:"email" form:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" form:"phone_number"`
	Password    string  `json:"password" form:"password" binding:"required"`
}

// UpdateProfileRequest represents the profile fields a user may change
type UpdateProfileRequest struct {
	Email       *string `json:"email" form:"email" binding:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" form:"phone_number" binding:"omitempty,max=50"`
	Username    *string `json:"username" form:"username" binding:"omitempty,max=255"`
	Password    *string `json:"password" form:"password" binding:"omitempty,min=6"`
}

func accountService() *services.AccountService {
	return services.NewAccountService(
		config.GetDB(),
		services.NewTokenService(config.GetConfig()),
		services.GetImageService(),
	)
}

// Signup handles POST /api/v1/auth/signup - creates a user account and returns a token
func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := accountService().Register(c.Request.Context(), services.RegisterInput{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "User")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "User registered successfully.", result)
}

// Signin handles POST /api/v1/auth/signin - exchanges credentials for a token
func Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := accountService().Authenticate(c.Request.Context(), services.Credentials{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "User")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Login successful.", result)
}

// Logout handles POST /api/v1/auth/logout - revokes every token issued to the caller
func Logout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	if err := accountService().Logout(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err, "User")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Logged out successfully.", nil)
}

// GetAuthUser handles GET /api/v1/auth/user - returns the caller with their addresses
func GetAuthUser(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	user, err := accountService().GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "User")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "User retrieved successfully.", user)
}

// UpdateProfile handles PUT /api/v1/auth/profile - JSON or multipart with an optional profile_picture
func UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	picture, err := optionalFile(c, "profile_picture")
	if err != nil {
		respondInternalError(c, err)
		return
	}

	user, err := accountService().UpdateProfile(c.Request.Context(), userID, services.ProfileInput{
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Username:       req.Username,
		Password:       req.Password,
		ProfilePicture: picture,
	})
	if err != nil {
		respondServiceError(c, err, "User")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Profile updated successfully.", user)
}

// optionalFile returns the uploaded file for field, or nil when none was sent
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fileHeader, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fileHeader, nil
}
