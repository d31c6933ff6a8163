package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client is a walk-in client registered by a partner shop during intake.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the partner that registered this client.
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Prenom string `gorm:"size:100;not null" json:"first_name"`
	Nom    string `gorm:"size:100;not null;index" json:"last_name"`
	Email  string `gorm:"size:255;not null;index" json:"email"`
	Phone  string `gorm:"size:50;not null" json:"phone"`

	Address    string `gorm:"size:255" json:"address,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`
}

// GetUserID implements policy.Ownable.
func (c *Client) GetUserID() uint {
	return c.UserID
}

// FullName joins first and last name, skipping empty parts.
func (c *Client) FullName() string {
	parts := make([]string, 0, 2)
	if c.Prenom != "" {
		parts = append(parts, c.Prenom)
	}
	if c.Nom != "" {
		parts = append(parts, c.Nom)
	}
	return strings.Join(parts, " ")
}

// FullAddress formats the postal address over multiple lines,
// skipping empty components.
func (c *Client) FullAddress() string {
	var lines []string
	if c.Address != "" {
		lines = append(lines, c.Address)
	}
	cityLine := strings.TrimSpace(c.PostalCode + " " + c.City)
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	if c.Country != "" {
		lines = append(lines, c.Country)
	}
	return strings.Join(lines, "\n")
}
