package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortableProductFields whitelists the columns products may be ordered by
var sortableProductFields = map[string]bool{
	"created_at":  true,
	"name":        true,
	"price":       true,
	"total_sales": true,
	"category":    true,
}

// ProductFilter narrows and orders the catalog listing
type ProductFilter struct {
	Search    string
	Category  string
	SortBy    string
	SortOrder string
}

// ProductInput carries the writable product attributes. Nil fields are left
// unchanged on update.
type ProductInput struct {
	Name        *string
	Price       *int64
	Category    *string
	Description *string
	Image       *multipart.FileHeader
}

// ReviewSummary is the review listing of one product
type ReviewSummary struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	AverageRating *float64        `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
	Reviews       []models.Review `json:"reviews"`
}

// likeEscaper makes user input match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// CatalogService serves products and their reviews
type CatalogService struct {
	db     *gorm.DB
	images ImageService
}

func NewCatalogService(db *gorm.DB, images ImageService) *CatalogService {
	return &CatalogService{db: db, images: images}
}

// ListProducts returns products matching filter, each annotated with its average rating
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	sortBy := strings.ToLower(strings.TrimSpace(filter.SortBy))
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !sortableProductFields[sortBy] {
		return nil, newValidationError("sort_by", "The selected sort_by is invalid.")
	}

	desc := true
	switch strings.ToLower(strings.TrimSpace(filter.SortOrder)) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return nil, newValidationError("sort_order", "The selected sort_order is invalid.")
	}

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	if err := s.annotateRatings(ctx, products); err != nil {
		return nil, err
	}
	for i := range products {
		products[i].ImageURL = imageURL(ctx, s.images, products[i].Image)
	}
	return products, nil
}

// GetProduct returns a product with its reviews, their authors and the average rating
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Reviews.User").
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ratings := make([]int, 0, len(product.Reviews))
	for _, review := range product.Reviews {
		ratings = append(ratings, review.Rating)
	}
	product.AverageRating = averageRating(ratings)
	product.ImageURL = imageURL(ctx, s.images, product.Image)
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	return &product, nil
}

// CreateProduct stores a new product, uploading its optional image first
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	fields := utils.FieldErrors{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields.Add("name", "The name field is required.")
	}
	if in.Price == nil {
		fields.Add("price", "The price field is required.")
	}
	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		fields.Add("category", "The category field is required.")
	}
	validateProductInput(in, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	product := models.Product{
		Name:        strings.TrimSpace(*in.Name),
		Price:       *in.Price,
		Category:    strings.TrimSpace(*in.Category),
		Description: in.Description,
	}

	if in.Image != nil {
		key, err := s.uploadImage(ctx, "image", in.Image)
		if err != nil {
			return nil, err
		}
		product.Image = &key
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		releaseImage(ctx, s.images, product.Image)
		return nil, err
	}

	logging.FromContext(ctx).Info("product created", "product_id", product.ID)
	product.ImageURL = imageURL(ctx, s.images, product.Image)
	return &product, nil
}

// UpdateProduct applies the non-nil fields of in. A new image replaces and releases the old one.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	fields := utils.FieldErrors{}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields.Add("name", "The name field may not be empty.")
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		fields.Add("category", "The category field may not be empty.")
	}
	validateProductInput(in, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	// Updates writes the new key back into product, so keep the old one by value
	var oldImage string
	if product.Image != nil {
		oldImage = *product.Image
	}
	var newImage *string
	if in.Image != nil {
		key, err := s.uploadImage(ctx, "image", in.Image)
		if err != nil {
			return nil, err
		}
		newImage = &key
		updates["image"] = key
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			releaseImage(ctx, s.images, newImage)
			return nil, err
		}
	}
	if newImage != nil {
		releaseImage(ctx, s.images, &oldImage)
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct soft deletes a product; its image is kept for historical transactions
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	logging.FromContext(ctx).Info("product deleted", "product_id", id)
	return nil
}

// AddReview records the user's single review of a product. The unique
// (user_id, product_id) index decides races between concurrent inserts.
func (s *CatalogService) AddReview(ctx context.Context, userID, productID uint, rating int, comment *string) (*models.Review, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, newValidationError("rating", "The rating must be between 1 and 5.")
	}

	db := s.db.WithContext(ctx)
	var product models.Product
	if err := db.Select("id").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrReferenceNotFound)
		}
		return nil, err
	}

	review := models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := db.Create(&review).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: product already reviewed", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("review added", "review_id", review.ID, "product_id", productID, "user_id", userID)
	return &review, nil
}

// ListReviews returns a product's reviews newest first with their average
func (s *CatalogService) ListReviews(ctx context.Context, productID uint) (*ReviewSummary, error) {
	db := s.db.WithContext(ctx)
	var product models.Product
	if err := db.Select("id", "name").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	reviews := []models.Review{}
	err := db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	ratings := make([]int, 0, len(reviews))
	for _, review := range reviews {
		ratings = append(ratings, review.Rating)
	}

	return &ReviewSummary{
		ProductID:     product.ID,
		ProductName:   product.Name,
		AverageRating: averageRating(ratings),
		TotalReviews:  len(reviews),
		Reviews:       reviews,
	}, nil
}

func (s *CatalogService) annotateRatings(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	var rows []struct {
		ProductID   uint
		RatingTotal int64
		ReviewCount int64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("product_id, SUM(rating) AS rating_total, COUNT(*) AS review_count").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byProduct := make(map[uint]*float64, len(rows))
	for _, row := range rows {
		if row.ReviewCount == 0 {
			continue
		}
		avg := roundRating(float64(row.RatingTotal) / float64(row.ReviewCount))
		byProduct[row.ProductID] = &avg
	}
	for i := range products {
		products[i].AverageRating = byProduct[products[i].ID]
	}
	return nil
}

func (s *CatalogService) uploadImage(ctx context.Context, field string, fileHeader *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	key, err := s.images.UploadImage(ctx, FolderProducts, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return "", newValidationError(field, uploadErr.Message)
		}
		return "", err
	}
	return key, nil
}

func validateProductInput(in ProductInput, fields utils.FieldErrors) {
	if in.Name != nil && len(*in.Name) > 255 {
		fields.Add("name", "The name may not be greater than 255 characters.")
	}
	if in.Category != nil && len(*in.Category) > 255 {
		fields.Add("category", "The category may not be greater than 255 characters.")
	}
	if in.Price != nil && *in.Price < 0 {
		fields.Add("price", "The price must be at least 0.")
	}
}

// averageRating is nil when there are no ratings, never 0.0
func averageRating(ratings []int) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := roundRating(float64(sum) / float64(len(ratings)))
	return &avg
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
