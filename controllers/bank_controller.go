package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// BankRequest represents bank fields; it binds from JSON or multipart with an optional logo
type BankRequest struct {
	Name                *string `json:"name" form:"name" binding:"omitempty,max=255"`
	AccountNumber       *string `json:"account_number" form:"account_number" binding:"omitempty,max=50"`
	AccountHolder       *string `json:"account_holder" form:"account_holder" binding:"omitempty,max=255"`
	PaymentInstructions *string `json:"payment_instructions" form:"payment_instructions"`
}

func bankService() *services.BankService {
	return services.NewBankService(config.GetDB(), services.GetImageService())
}

// ListBanks handles GET /api/v1/bank
func ListBanks(c *gin.Context) {
	banks, err := bankService().List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Bank")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Banks retrieved successfully.", banks)
}

// GetBank handles GET /api/v1/bank/:bankId
func GetBank(c *gin.Context) {
	id, ok := paramID(c, "bankId", "Bank")
	if !ok {
		return
	}

	bank, err := bankService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Bank")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Bank retrieved successfully.", bank)
}

// CreateBank handles POST /api/v1/admin/banks (admin only)
func CreateBank(c *gin.Context) {
	input, ok := bindBankInput(c)
	if !ok {
		return
	}

	bank, err := bankService().Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Bank")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Bank created successfully.", bank)
}

// UpdateBank handles PUT /api/v1/admin/banks/:bankId (admin only)
func UpdateBank(c *gin.Context) {
	id, ok := paramID(c, "bankId", "Bank")
	if !ok {
		return
	}
	input, ok := bindBankInput(c)
	if !ok {
		return
	}

	bank, err := bankService().Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "Bank")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Bank updated successfully.", bank)
}

// DeleteBank handles DELETE /api/v1/admin/banks/:bankId (admin only)
func DeleteBank(c *gin.Context) {
	id, ok := paramID(c, "bankId", "Bank")
	if !ok {
		return
	}

	if err := bankService().Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Bank")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Bank deleted successfully.", nil)
}

func bindBankInput(c *gin.Context) (services.BankInput, bool) {
	var req BankRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindingError(c, err)
		return services.BankInput{}, false
	}

	logo, err := optionalFile(c, "logo")
	if err != nil {
		respondInternalError(c, err)
		return services.BankInput{}, false
	}

	return services.BankInput{
		Name:                req.Name,
		AccountNumber:       req.AccountNumber,
		AccountHolder:       req.AccountHolder,
		PaymentInstructions: req.PaymentInstructions,
		Logo:                logo,
	}, true
}
