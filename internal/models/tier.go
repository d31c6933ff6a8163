package models

import "time"

// ServiceTier is a named certification package with a fixed price.
// Seeded at startup (custodia, imperium); the intake wizard validates
// the selected tier against this catalog.
type ServiceTier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code     string  `gorm:"size:40;not null;unique" json:"code"`
	Name     string  `gorm:"size:100;not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	Currency string  `gorm:"size:3;not null;default:'EUR'" json:"currency"`

	// Features is a short human description of what the tier includes.
	Features string `gorm:"type:text" json:"features,omitempty"`

	Active bool `gorm:"not null;default:true" json:"active"`
}
