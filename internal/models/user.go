package models

import (
	"time"

	"gorm.io/gorm"
)

// Role determines which routes a user may reach.
type Role string

const (
	RoleUser    Role = "user"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePartner, RoleAdmin:
		return true
	}
	return false
}

// User is an account holder. Partners run shops and register walk-in
// clients; admins manage accounts.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email    string `gorm:"unique;not null;index" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	Prenom   string `gorm:"size:100" json:"first_name"`
	Nom      string `gorm:"size:100" json:"last_name"`

	Role Role `gorm:"size:20;not null;default:'user'" json:"role"`

	// Shop display name for partner accounts.
	ShopName string `gorm:"size:200" json:"shop_name,omitempty"`
}

// IsPartner reports whether the user can run missions.
func (u *User) IsPartner() bool {
	return u.Role == RolePartner || u.Role == RoleAdmin
}

// IsAdmin reports whether the user can manage accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
