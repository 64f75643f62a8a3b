package models

import (
	"time"
)

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus string

const (
	StatusPending                TransactionStatus = "pending"
	StatusWaitingForConfirmation TransactionStatus = "waiting_for_confirmation"
	StatusProcessed              TransactionStatus = "processed"
	StatusOnShipment             TransactionStatus = "on_shipment"
	StatusCompleted              TransactionStatus = "completed"
	StatusCanceled               TransactionStatus = "canceled"
)

// TransactionStatuses lists every status in workflow order
var TransactionStatuses = []TransactionStatus{
	StatusPending,
	StatusWaitingForConfirmation,
	StatusProcessed,
	StatusOnShipment,
	StatusCompleted,
	StatusCanceled,
}

// TerminalStatuses are the statuses a transaction can never leave
var TerminalStatuses = []TransactionStatus{StatusCompleted, StatusCanceled}

// IsValid reports whether s is a member of the status set
func (s TransactionStatus) IsValid() bool {
	for _, status := range TransactionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted out of s
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// ParseStatus converts raw input into a TransactionStatus
func ParseStatus(raw string) (TransactionStatus, bool) {
	status := TransactionStatus(raw)
	return status, status.IsValid()
}

// ShippingSnapshot is copied onto a transaction when it is created.
// Later address book edits never change it.
type ShippingSnapshot struct {
	RecipientName   string `gorm:"size:255;not null;default:''" json:"recipient_name"`
	RecipientPhone  string `gorm:"size:50;not null;default:''" json:"recipient_phone"`
	ShippingAddress string `gorm:"type:text;not null;default:''" json:"shipping_address"`
}

// Transaction represents one checkout attempt
type Transaction struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"not null;index" json:"user_id"`
	User            *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalAmount     int64             `gorm:"not null;check:total_amount >= 0" json:"total_amount"`
	Status          TransactionStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	PaymentProof    *string           `json:"payment_proof"`                        // nullable, blob key
	PaymentProofURL *string           `gorm:"-" json:"payment_proof_url,omitempty"` // computed field
	ShippingSnapshot
	Items     []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem is one product and quantity within a transaction
type TransactionItem struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	TransactionID uint `gorm:"not null;index" json:"transaction_id"`
	// Products are soft deleted; RESTRICT keeps a hard delete from erasing history
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the TransactionItem model
func (TransactionItem) TableName() string {
	return "transaction_items"
}
