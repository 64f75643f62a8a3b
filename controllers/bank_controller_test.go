package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankRouter(user *models.User) *gin.Engine {
	router := routerAs(user)
	router.GET("/bank", ListBanks)
	router.GET("/bank/:bankId", GetBank)
	router.POST("/admin/banks", CreateBank)
	router.PUT("/admin/banks/:bankId", UpdateBank)
	router.DELETE("/admin/banks/:bankId", DeleteBank)
	return router
}

func TestBankEndpoints(t *testing.T) {
	env := setupControllerEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	router := bankRouter(admin)

	w := serve(router, multipartRequest(t, http.MethodPost, "/admin/banks", map[string]string{
		"name":                 "BCA",
		"account_number":       "1234567890",
		"account_holder":       "PT Ecotainment",
		"payment_instructions": "Transfer the exact amount.",
	}, "logo", "bca.png", []byte("logo")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bank models.Bank
	decodeData(t, w, &bank)
	require.NotNil(t, bank.Logo)
	logo := *bank.Logo

	w = serve(router, jsonRequest(t, http.MethodPost, "/admin/banks", map[string]string{"name": "BNI"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Errors, "account_number")

	path := fmt.Sprintf("/admin/banks/%d", bank.ID)
	w = serve(router, jsonRequest(t, http.MethodPut, path, map[string]string{"account_holder": "Ecotainment Ltd"}))
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &bank)
	assert.Equal(t, "Ecotainment Ltd", bank.AccountHolder)

	public := bankRouter(nil)
	w = serve(public, httptestGet("/bank"))
	require.Equal(t, http.StatusOK, w.Code)
	var banks []models.Bank
	decodeData(t, w, &banks)
	assert.Len(t, banks, 1)

	w = serve(public, httptestGet(fmt.Sprintf("/bank/%d", bank.ID)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, jsonRequest(t, http.MethodDelete, path, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.images.ImageExists(logo))

	w = serve(public, httptestGet(fmt.Sprintf("/bank/%d", bank.ID)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Bank not found.", decodeEnvelope(t, w).Message)
}
