package models

import (
	"time"
)

// Bank is a payment destination shown to shoppers at checkout
type Bank struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	Logo                *string   `json:"logo"`                        // nullable, blob key
	LogoURL             *string   `gorm:"-" json:"logo_url,omitempty"` // computed field
	AccountNumber       string    `gorm:"size:50;not null" json:"account_number"`
	AccountHolder       string    `gorm:"size:255;not null" json:"account_holder"`
	PaymentInstructions string    `gorm:"type:text;not null" json:"payment_instructions"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Bank model
func (Bank) TableName() string {
	return "banks"
}
