package models

import (
	"time"
)

// Cart is one (user, product) line of a user's shopping cart
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_carts_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_carts_user_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}
