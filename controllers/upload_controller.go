package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves images stored on local disk
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		utils.RespondError(c, http.StatusBadRequest, "Filename is required.", nil)
		return
	}

	// Prevent directory traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		utils.RespondError(c, http.StatusBadRequest, "Invalid filename.", nil)
		return
	}

	contentType, ok := utils.ImageContentType(filename)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Only jpeg, jpg, png and gif files are supported.", nil)
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		utils.RespondError(c, http.StatusNotFound, "Image not found.", nil)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
