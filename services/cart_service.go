package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/ecotainment-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService manages the per-user cart. Keys are (user, product).
type CartService struct {
	db     *gorm.DB
	images ImageService
}

func NewCartService(db *gorm.DB, images ImageService) *CartService {
	return &CartService{db: db, images: images}
}

// List returns the user's cart lines with their products
func (s *CartService) List(ctx context.Context, userID uint) ([]models.Cart, error) {
	return s.find(ctx, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FilterByProducts returns the user's cart lines for the given products only
func (s *CartService) FilterByProducts(ctx context.Context, userID uint, productIDs []uint) ([]models.Cart, error) {
	if len(productIDs) == 0 {
		return nil, newValidationError("product_ids", "The product_ids field is required.")
	}
	return s.find(ctx, s.db.WithContext(ctx).Where("user_id = ? AND product_id IN ?", userID, productIDs))
}

// AddOrUpdate inserts the line or overwrites its quantity in one statement
func (s *CartService) AddOrUpdate(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, newValidationError("quantity", "The quantity must be at least 1.")
	}
	if err := productExists(ctx, s.db, productID); err != nil {
		return nil, err
	}

	line := models.Cart{UserID: userID, ProductID: productID, Quantity: quantity}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&line).Error
	if err != nil {
		return nil, err
	}

	return s.get(ctx, userID, productID)
}

// UpdateQuantity changes the quantity of an existing line
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, newValidationError("quantity", "The quantity must be at least 1.")
	}
	res := s.db.WithContext(ctx).Model(&models.Cart{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.get(ctx, userID, productID)
}

// Remove deletes the line for a product
func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Cart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CartService) get(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	lines, err := s.find(ctx, s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID))
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNotFound
	}
	return &lines[0], nil
}

func (s *CartService) find(ctx context.Context, query *gorm.DB) ([]models.Cart, error) {
	lines := []models.Cart{}
	if err := query.Preload("Product").Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	for i := range lines {
		if p := lines[i].Product; p != nil {
			p.ImageURL = imageURL(ctx, s.images, p.Image)
		}
	}
	return lines, nil
}

// productExists reports ErrReferenceNotFound for unknown or deleted products
func productExists(ctx context.Context, db *gorm.DB, productID uint) error {
	var product models.Product
	err := db.WithContext(ctx).Select("id").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product", ErrReferenceNotFound)
	}
	return err
}
