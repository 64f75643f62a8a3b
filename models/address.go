package models

import (
	"strings"
	"time"
)

// Address is a shipping address owned by a user
type Address struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	RecipientName   string    `gorm:"not null" json:"recipient_name"`
	PhoneNumber     string    `gorm:"not null" json:"phone_number"`
	Province        *string   `json:"province"`
	CityOrDistrict  string    `gorm:"not null" json:"city_or_district"`
	DetailedAddress string    `gorm:"type:text;not null" json:"detailed_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}

// Snapshot copies the address into a shipping snapshot for a transaction
func (a Address) Snapshot() ShippingSnapshot {
	parts := []string{a.DetailedAddress, a.CityOrDistrict}
	if a.Province != nil && *a.Province != "" {
		parts = append(parts, *a.Province)
	}
	return ShippingSnapshot{
		RecipientName:   a.RecipientName,
		RecipientPhone:  a.PhoneNumber,
		ShippingAddress: strings.Join(parts, ", "),
	}
}
