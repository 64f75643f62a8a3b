package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseHistoryEndpoint(t *testing.T) {
	env := setupControllerEnv(t)
	user := testutil.CreateUser(t, env.db, models.RoleUser)
	product := testutil.CreateProduct(t, env.db, "Soap", 100, 0)
	txn := testutil.CreateTransaction(t, env.db, user.ID, models.StatusOnShipment, map[uint]int{product.ID: 1})
	testutil.CreateTransaction(t, env.db, user.ID, models.StatusPending, map[uint]int{product.ID: 1})

	router := routerAs(user)
	router.PATCH("/transactions/:id/status", UpdateTransactionStatus)
	router.GET("/purchase-history", GetPurchaseHistory)

	w := serve(router, httptestGet("/purchase-history"))
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.PurchaseHistory
	decodeData(t, w, &entries)
	assert.Empty(t, entries)

	w = serve(router, jsonRequest(t, http.MethodPatch, fmt.Sprintf("/transactions/%d/status", txn.ID), map[string]string{"status": "completed"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(router, httptestGet("/purchase-history"))
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, txn.ID, entries[0].TransactionID)
	require.NotNil(t, entries[0].Transaction)
	assert.Len(t, entries[0].Transaction.Items, 1)
}

func TestSearchHistoryEndpoints(t *testing.T) {
	env := setupControllerEnv(t)
	user := testutil.CreateUser(t, env.db, models.RoleUser)
	router := routerAs(user)
	router.GET("/search-history", GetSearchHistory)
	router.POST("/search-history", RecordSearch)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"records a query", "bamboo", http.StatusCreated},
		{"records another", "tote", http.StatusCreated},
		{"empty query", "", http.StatusUnprocessableEntity},
		{"too long", strings.Repeat("q", 256), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, jsonRequest(t, http.MethodPost, "/search-history", map[string]string{"search_query": tt.query}))
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	w := serve(router, httptestGet("/search-history"))
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.SearchHistory
	decodeData(t, w, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "tote", entries[0].SearchQuery)
}
