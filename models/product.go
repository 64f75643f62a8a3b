package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog entry
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;index" json:"name"`
	Price         int64          `gorm:"not null;check:price >= 0" json:"price"`
	Category      string         `gorm:"not null;index" json:"category"`
	Description   *string        `gorm:"type:text" json:"description"`
	Image         *string        `json:"image"`                        // nullable, blob key
	ImageURL      *string        `gorm:"-" json:"image_url,omitempty"` // computed field
	TotalSales    int64          `gorm:"not null;default:0;check:total_sales >= 0" json:"total_sales"`
	AverageRating *float64       `gorm:"-" json:"average_rating"` // null when the product has no reviews
	Reviews       []Review       `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
