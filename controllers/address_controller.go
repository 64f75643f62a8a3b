package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// AddressRequest represents the request body for creating or replacing an address
type AddressRequest struct {
	RecipientName   string  `json:"recipient_name" binding:"required,max=255"`
	PhoneNumber     string  `json:"phone_number" binding:"required,max=50"`
	Province        *string `json:"province" binding:"omitempty,max=255"`
	CityOrDistrict  string  `json:"city_or_district" binding:"required,max=255"`
	DetailedAddress string  `json:"detailed_address" binding:"required"`
}

func (r AddressRequest) input() services.AddressInput {
	return services.AddressInput{
		RecipientName:   r.RecipientName,
		PhoneNumber:     r.PhoneNumber,
		Province:        r.Province,
		CityOrDistrict:  r.CityOrDistrict,
		DetailedAddress: r.DetailedAddress,
	}
}

// ListAddresses handles GET /api/v1/auth/address
func ListAddresses(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	addresses, err := accountService().ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Address")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Addresses retrieved successfully.", addresses)
}

// CreateAddress handles POST /api/v1/auth/address
func CreateAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	address, err := accountService().AddAddress(c.Request.Context(), userID, req.input())
	if err != nil {
		respondServiceError(c, err, "Address")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Address created successfully.", address)
}

// UpdateAddress handles PUT /api/v1/auth/address/:addressId
func UpdateAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	addressID, ok := paramID(c, "addressId", "Address")
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	address, err := accountService().UpdateAddress(c.Request.Context(), userID, addressID, req.input())
	if err != nil {
		respondServiceError(c, err, "Address")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Address updated successfully.", address)
}

// DeleteAddress handles DELETE /api/v1/auth/address/:addressId
func DeleteAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	addressID, ok := paramID(c, "addressId", "Address")
	if !ok {
		return
	}

	if err := accountService().DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		respondServiceError(c, err, "Address")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Address deleted successfully.", nil)
}
