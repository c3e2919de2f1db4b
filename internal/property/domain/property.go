package domain

import "time"

// Property is one tracked property. Read-only input to the relevance filter;
// managed by the property CRUD endpoints.
type Property struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Address      string    `json:"address" gorm:"type:text;not null"`
	PropertyType string    `json:"property_type"` // apartment, house, condo, etc.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
