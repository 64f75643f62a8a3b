package models

import (
	"time"
)

// PurchaseHistory is written once per transaction, when it is completed
type PurchaseHistory struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	TransactionID uint         `gorm:"not null;uniqueIndex" json:"transaction_id"`
	Transaction   *Transaction `gorm:"foreignKey:TransactionID;constraint:OnDelete:RESTRICT" json:"transaction,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the PurchaseHistory model
func (PurchaseHistory) TableName() string {
	return "purchase_history"
}
