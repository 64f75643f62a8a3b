package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUploadRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpDir := t.TempDir()
	previous := utils.UploadDir
	utils.UploadDir = tmpDir
	t.Cleanup(func() { utils.UploadDir = previous })

	router := gin.New()
	router.GET("/uploads/:filename", GetUploadedImage)
	return router, tmpDir
}

func TestGetUploadedImage_Success(t *testing.T) {
	router, tmpDir := setupUploadRouter(t)

	tests := []struct {
		filename    string
		contentType string
	}{
		{"products_abc.png", "image/png"},
		{"payment_proofs_abc.jpg", "image/jpeg"},
		{"banks_abc.JPEG", "image/jpeg"},
		{"profile_pictures_abc.gif", "image/gif"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			content := []byte("image bytes for " + tt.filename)
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, tt.filename), content, 0o644))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+tt.filename, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
			assert.Equal(t, content, w.Body.Bytes())
		})
	}
}

func TestGetUploadedImage_FileNotFound(t *testing.T) {
	router, _ := setupUploadRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Image not found.", resp.Message)
}

func TestGetUploadedImage_RejectsBadNames(t *testing.T) {
	router, _ := setupUploadRouter(t)

	tests := []struct {
		name           string
		filename       string
		expectedStatus int
	}{
		// slashes never reach the handler; the router treats them as separators
		{"parent traversal", "../../../etc/passwd", http.StatusNotFound},
		{"nested path", "path/to/file.png", http.StatusNotFound},
		{"backslashes", "path\\to\\file.png", http.StatusBadRequest},
		{"leading dots", "..file.png", http.StatusBadRequest},
		{"text file", "notes.txt", http.StatusBadRequest},
		{"no extension", "image", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+tt.filename, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
