package models

import (
	"time"
)

// SearchHistory is an append-only log of a user's catalog searches
type SearchHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	SearchQuery string    `gorm:"size:255;not null" json:"search_query"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SearchHistory model
func (SearchHistory) TableName() string {
	return "search_histories"
}
