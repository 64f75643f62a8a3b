package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// respondServiceError maps a service error onto the response envelope.
// resource names the entity for not found messages, e.g. "Transaction".
func respondServiceError(c *gin.Context, err error, resource string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondError(c, http.StatusUnprocessableEntity, "Validation failed.", verr.Fields)
	case errors.Is(err, services.ErrValidationFailed):
		utils.RespondError(c, http.StatusUnprocessableEntity, "Validation failed.", nil)
	case errors.Is(err, services.ErrReferenceNotFound):
		utils.RespondError(c, http.StatusNotFound, sentence(detail(err, services.ErrReferenceNotFound, "record")+" not found"), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, resource+" not found.", nil)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, "Forbidden.", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusBadRequest, "Transaction status can no longer be changed.", nil)
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondError(c, http.StatusBadRequest, "Payment proof can only be uploaded for pending transactions.", nil)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, sentence(detail(err, services.ErrConflict, "resource already exists")), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(c, http.StatusUnauthorized, "Invalid credentials.", nil)
	default:
		respondInternalError(c, err)
	}
}

// respondInternalError logs err and hides its detail in production
func respondInternalError(c *gin.Context, err error) {
	logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
	_ = c.Error(err)

	var detail interface{}
	if cfg := config.GetConfig(); cfg == nil || !cfg.IsProduction() {
		detail = gin.H{"error": err.Error()}
	}
	utils.RespondError(c, http.StatusInternalServerError, "Internal server error.", detail)
}

// respondBindingError reports request binding failures as 422
func respondBindingError(c *gin.Context, err error) {
	utils.RespondError(c, http.StatusUnprocessableEntity, "Validation failed.", utils.ValidationErrors(err))
}

// detail returns the context wrapped around sentinel, e.g. "product" for
// "referenced record not found: product"
func detail(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return fallback
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// paramID parses a positive numeric path parameter, writing a 404 when it is not one
func paramID(c *gin.Context, name, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusNotFound, resource+" not found.", nil)
		return 0, false
	}
	return uint(id), true
}
