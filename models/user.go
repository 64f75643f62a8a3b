package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the system (shopper or admin)
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          *string   `gorm:"uniqueIndex" json:"email"`        // nullable, phone-only accounts are allowed
	PhoneNumber    *string   `gorm:"uniqueIndex" json:"phone_number"` // nullable, email-only accounts are allowed
	Username       string    `gorm:"not null;default:''" json:"username"`
	Password       string    `gorm:"not null" json:"-"` // bcrypt hash
	Role           string    `gorm:"not null;default:'user'" json:"role"`
	ProfilePicture *string   `json:"profile_picture"`                        // blob key
	ProfileURL     *string   `gorm:"-" json:"profile_picture_url,omitempty"` // computed field
	TokenVersion   int       `gorm:"not null;default:0" json:"-"`            // bumped on logout
	Addresses      []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// Identity returns the authorization identity of the user
func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role}
}
