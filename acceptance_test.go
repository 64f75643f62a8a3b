package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAPIHealthEndpointAcceptance drives the router through a real HTTP listener
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	server := httptest.NewServer(setupRouter(t))
	defer server.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	for i := 0; i < 5; i++ {
		start := time.Now()
		resp, err := client.Get(server.URL + "/api/v1/health")
		require.NoError(t, err)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("request %d", i+1))
		assert.True(t, body.Success)
		assert.Equal(t, "Ecotainment API is running", body.Message)
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestUnknownRouteAcceptance(t *testing.T) {
	server := httptest.NewServer(setupRouter(t))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/orders")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
