package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/services"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitImageStorage_LocalDisk(t *testing.T) {
	previousDir := utils.UploadDir
	previousImages := services.GetImageService()
	t.Cleanup(func() {
		utils.UploadDir = previousDir
		services.SetImageService(previousImages)
	})

	dir := filepath.Join(t.TempDir(), "uploads")
	cfg := &config.Config{UploadDir: dir}

	require.NoError(t, initImageStorage(context.Background(), cfg))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, utils.UploadDir)
	assert.IsType(t, &services.LocalImageService{}, services.GetImageService())
}
