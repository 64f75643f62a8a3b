package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/middleware"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// TransactionItemRequest is one requested product line
type TransactionItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// ShippingRequest is an inline shipping destination
type ShippingRequest struct {
	RecipientName   string `json:"recipient_name" binding:"max=255"`
	RecipientPhone  string `json:"recipient_phone" binding:"max=50"`
	ShippingAddress string `json:"shipping_address"`
}

// CreateTransactionRequest represents the request body for checking out
type CreateTransactionRequest struct {
	TotalAmount *int64                   `json:"total_amount" binding:"required,gte=0"`
	AddressID   *uint                    `json:"address_id"`
	Shipping    *ShippingRequest         `json:"shipping"`
	Items       []TransactionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateTransactionStatusRequest represents the request body for a status change
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func transactionService() *services.TransactionService {
	return services.NewTransactionService(config.GetDB(), services.GetImageService(), services.GetEventPublisher())
}

// CreateTransaction handles POST /api/v1/transactions - creates a pending transaction
func CreateTransaction(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	input := services.CreateTransactionInput{
		TotalAmount: *req.TotalAmount,
		AddressID:   req.AddressID,
	}
	if req.Shipping != nil {
		input.Shipping = &models.ShippingSnapshot{
			RecipientName:   req.Shipping.RecipientName,
			RecipientPhone:  req.Shipping.RecipientPhone,
			ShippingAddress: req.Shipping.ShippingAddress,
		}
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.TransactionItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	txn, err := transactionService().Create(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err, "Transaction")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Transaction created successfully.", txn)
}

// ListTransactions handles GET /api/v1/transactions - the caller's transactions
func ListTransactions(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	txns, err := transactionService().ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Transaction")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Transactions retrieved successfully.", txns)
}

// GetTransaction handles GET /api/v1/transactions/:id
func GetTransaction(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	id, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}

	txn, err := transactionService().Get(c.Request.Context(), id, identity)
	if err != nil {
		respondServiceError(c, err, "Transaction")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Transaction retrieved successfully.", txn)
}

// UpdateTransactionStatus handles PATCH /api/v1/transactions/:id/status and
// PUT /api/v1/admin/transactions/:id/status. Admin callers skip the ownership check.
func UpdateTransactionStatus(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	id, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}

	var req UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	txn, err := transactionService().Transition(c.Request.Context(), id, identity, models.TransactionStatus(req.Status))
	if err != nil {
		respondServiceError(c, err, "Transaction")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Transaction status updated successfully.", txn)
}

// UploadPaymentProof handles POST /api/v1/transactions/:id/proof - multipart payment_proof
func UploadPaymentProof(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	id, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("payment_proof")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			utils.RespondError(c, http.StatusUnprocessableEntity, "Validation failed.", utils.FieldErrors{
				"payment_proof": {"The payment_proof field is required."},
			})
			return
		}
		respondInternalError(c, err)
		return
	}

	txn, err := transactionService().UploadPaymentProof(c.Request.Context(), id, identity, fileHeader)
	if err != nil {
		respondServiceError(c, err, "Transaction")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Payment proof uploaded successfully.", txn)
}

// ListAllTransactions handles GET /api/v1/admin/transactions (admin only)
func ListAllTransactions(c *gin.Context) {
	txns, err := transactionService().ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Transaction")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Transactions retrieved successfully.", txns)
}
