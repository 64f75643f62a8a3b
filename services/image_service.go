package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/utils"
)

// Storage folders, one per kind of blob
const (
	FolderProducts        = "products"
	FolderPaymentProofs   = "payment_proofs"
	FolderProfilePictures = "profile_pictures"
	FolderBankLogos       = "banks"
)

// ImageService handles all image-related operations including upload, retrieval, and deletion
type ImageService interface {
	// UploadImage validates and stores an image file, returns the storage key
	UploadImage(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

var (
	imageServiceMu       sync.RWMutex
	imageServiceInstance ImageService
)

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	SetImageService(&S3ImageService{s3Service: s3Service})
	return GetImageService()
}

// InitLocalImageService initializes the image service with the local disk backend
func InitLocalImageService(uploadDir string) ImageService {
	SetImageService(NewLocalImageService(uploadDir))
	return GetImageService()
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	imageServiceMu.RLock()
	defer imageServiceMu.RUnlock()
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceMu.Lock()
	defer imageServiceMu.Unlock()
	imageServiceInstance = service
}

// UploadImage validates and uploads an image file to S3
func (s *S3ImageService) UploadImage(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(ctx, folder, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s3Key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// LocalImageService stores images in a directory served by GET /uploads/:filename
type LocalImageService struct {
	uploadDir string
}

func NewLocalImageService(uploadDir string) *LocalImageService {
	return &LocalImageService{uploadDir: uploadDir}
}

// UploadImage validates and saves an image; the folder becomes a filename prefix
func (s *LocalImageService) UploadImage(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.uploadDir, folder)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return filename, nil
}

func (s *LocalImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	return utils.GetImageURL(imageKey), nil
}

func (s *LocalImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if err := utils.RemoveUploadedFile(s.uploadDir, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// imageURL resolves a stored key to a URL; failures are logged and yield nil
func imageURL(ctx context.Context, images ImageService, key *string) *string {
	if images == nil || key == nil || *key == "" {
		return nil
	}
	url, err := images.GetImageURL(ctx, *key)
	if err != nil {
		logging.FromContext(ctx).Warn("failed to resolve image url", "key", *key, "error", err)
		return nil
	}
	return &url
}

// releaseImage deletes a blob that is no longer referenced; failures are only logged
func releaseImage(ctx context.Context, images ImageService, key *string) {
	if images == nil || key == nil || *key == "" {
		return
	}
	if err := images.DeleteImage(ctx, *key); err != nil {
		logging.FromContext(ctx).Warn("failed to release image", "key", *key, "error", err)
	}
}
