package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type controllerEnv struct {
	db        *gorm.DB
	images    *services.MockImageService
	publisher *services.RecordingPublisher
}

// setupControllerEnv installs a fresh database, mock blob store and recording
// publisher as the process-wide dependencies the handlers resolve.
func setupControllerEnv(t *testing.T) *controllerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	config.SetConfig(testutil.TestConfig())

	images := services.NewMockImageService()
	previousImages := services.GetImageService()
	images.SetAsMockForTesting()

	publisher := services.NewRecordingPublisher()
	previousPublisher := services.GetEventPublisher()
	services.SetEventPublisher(publisher)

	t.Cleanup(func() {
		services.SetImageService(previousImages)
		services.SetEventPublisher(previousPublisher)
	})

	return &controllerEnv{db: db, images: images, publisher: publisher}
}

// routerAs returns a router whose requests are authenticated as user; nil means anonymous
func routerAs(user *models.User) *gin.Engine {
	router := gin.New()
	if user != nil {
		router.Use(testutil.MockAuthMiddleware(user))
	}
	return router
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with fields and, when filename is set, one file under fileField
func multipartRequest(t *testing.T, method, path string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	resp := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, out), "data: %s", string(resp.Data))
}
