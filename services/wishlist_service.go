package services

import (
	"context"

	"github.com/kendall-kelly/ecotainment-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistService manages the per-user set of saved products
type WishlistService struct {
	db     *gorm.DB
	images ImageService
}

func NewWishlistService(db *gorm.DB, images ImageService) *WishlistService {
	return &WishlistService{db: db, images: images}
}

// List returns the user's saved products, including ones deleted from the
// catalog since they were saved
func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	entries := []models.Wishlist{}
	err := s.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if p := entries[i].Product; p != nil {
			p.ImageURL = imageURL(ctx, s.images, p.Image)
		}
	}
	return entries, nil
}

// Toggle removes the product if saved, otherwise saves it. added reports
// which happened; entry is nil when the product was removed.
func (s *WishlistService) Toggle(ctx context.Context, userID, productID uint) (added bool, entry *models.Wishlist, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Wishlist{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			added = false
			return nil
		}

		// only adding needs a live product; saved entries stay removable after deletion
		if err := productExists(ctx, tx, productID); err != nil {
			return err
		}
		saved := models.Wishlist{UserID: userID, ProductID: productID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&saved).Error; err != nil {
			return err
		}
		added = true
		entry = &saved
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return added, entry, nil
}
