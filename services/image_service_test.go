package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kendall-kelly/ecotainment-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3ImageService_Lifecycle(t *testing.T) {
	mockS3 := NewMockS3Service()
	images := &S3ImageService{s3Service: mockS3}
	ctx := context.Background()

	key, err := images.UploadImage(ctx, FolderProducts, newFileHeader(t, "image", "leaf.png", []byte("leaf")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, FolderProducts+"/"))
	assert.True(t, mockS3.FileExists(key))

	url, err := images.GetImageURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	require.NoError(t, images.DeleteImage(ctx, key))
	assert.False(t, mockS3.FileExists(key))
	assert.Equal(t, 0, mockS3.Count())
}

func TestS3ImageService_RejectsInvalidFiles(t *testing.T) {
	mockS3 := NewMockS3Service()
	images := &S3ImageService{s3Service: mockS3}

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"wrong extension", "notes.txt", []byte("text")},
		{"too large", "big.png", make([]byte, utils.MaxFileSize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := images.UploadImage(context.Background(), FolderProducts, newFileHeader(t, "image", tt.filename, tt.content))
			var uploadErr *utils.FileUploadError
			require.True(t, errors.As(err, &uploadErr))
			assert.Equal(t, 0, mockS3.Count())
		})
	}
}

func TestLocalImageService_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	images := NewLocalImageService(dir)
	ctx := context.Background()

	key, err := images.UploadImage(ctx, FolderPaymentProofs, newFileHeader(t, "payment_proof", "receipt.jpg", []byte("jpg")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, FolderPaymentProofs+"_"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	content, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg"), content)

	url, err := images.GetImageURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/uploads/"+key, url)

	require.NoError(t, images.DeleteImage(ctx, key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, images.DeleteImage(ctx, "../outside.png"))
}

func TestImageURLHelpers(t *testing.T) {
	ctx := context.Background()
	images := NewMockImageService()

	assert.Nil(t, imageURL(ctx, images, nil))
	assert.Nil(t, imageURL(ctx, nil, strPtr("products/x.png")))
	assert.Nil(t, imageURL(ctx, images, strPtr("products/missing.png")), "lookup failures degrade to nil")

	key, err := images.UploadImage(ctx, FolderProducts, newFileHeader(t, "image", "x.png", []byte("x")))
	require.NoError(t, err)
	url := imageURL(ctx, images, &key)
	require.NotNil(t, url)
	assert.Contains(t, *url, key)

	releaseImage(ctx, images, &key)
	assert.False(t, images.ImageExists(key))
	releaseImage(ctx, nil, &key)
}

func TestImageServiceRegistry(t *testing.T) {
	previous := GetImageService()
	t.Cleanup(func() { SetImageService(previous) })

	mock := NewMockImageService()
	mock.SetAsMockForTesting()
	assert.Same(t, mock, GetImageService())

	local := InitLocalImageService(t.TempDir())
	assert.IsType(t, &LocalImageService{}, local)

	s3 := InitImageService(NewMockS3Service())
	assert.IsType(t, &S3ImageService{}, s3)
}
