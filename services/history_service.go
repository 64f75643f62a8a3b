package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kendall-kelly/ecotainment-api/models"
	"gorm.io/gorm"
)

const MaxSearchQueryLength = 255

// HistoryService reads purchase history and records searches
type HistoryService struct {
	db     *gorm.DB
	images ImageService
}

func NewHistoryService(db *gorm.DB, images ImageService) *HistoryService {
	return &HistoryService{db: db, images: images}
}

// PurchaseHistory returns the user's completed purchases, newest first.
// Products are resolved even after they were soft deleted.
func (s *HistoryService) PurchaseHistory(ctx context.Context, userID uint) ([]models.PurchaseHistory, error) {
	entries := []models.PurchaseHistory{}
	err := s.db.WithContext(ctx).
		Preload("Transaction").
		Preload("Transaction.Items").
		Preload("Transaction.Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	for i := range entries {
		txn := entries[i].Transaction
		if txn == nil {
			continue
		}
		txn.PaymentProofURL = imageURL(ctx, s.images, txn.PaymentProof)
		for j := range txn.Items {
			if p := txn.Items[j].Product; p != nil {
				p.ImageURL = imageURL(ctx, s.images, p.Image)
			}
		}
	}
	return entries, nil
}

// SearchHistory returns the user's searches, newest first
func (s *HistoryService) SearchHistory(ctx context.Context, userID uint) ([]models.SearchHistory, error) {
	entries := []models.SearchHistory{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// RecordSearch appends a search query to the user's history
func (s *HistoryService) RecordSearch(ctx context.Context, userID uint, query string) (*models.SearchHistory, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newValidationError("search_query", "The search_query field is required.")
	}
	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return nil, newValidationError("search_query", "The search_query may not be greater than 255 characters.")
	}

	entry := models.SearchHistory{UserID: userID, SearchQuery: query}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
