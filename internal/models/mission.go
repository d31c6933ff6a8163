package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MissionStatus represents the lifecycle state of a certification mission.
type MissionStatus string

const (
	MissionStatusPending    MissionStatus = "pending"
	MissionStatusInProgress MissionStatus = "in_progress"
	MissionStatusCompleted  MissionStatus = "completed"
	MissionStatusCancelled  MissionStatus = "cancelled"
)

// PaymentMethod is how the client settles the mission.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCardInShop PaymentMethod = "card_in_shop"
	PaymentOnline     PaymentMethod = "online"
)

// Valid reports whether the payment method is one of the known values.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCardInShop, PaymentOnline:
		return true
	}
	return false
}

// Mission is one certification engagement for a walk-in client.
type Mission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the partner running this mission (for multi-tenant isolation).
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Reference is a human-readable mission number, e.g. CERT-2026-0001.
	Reference string `gorm:"size:50;uniqueIndex" json:"reference"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	TierCode      string        `gorm:"size:40;not null" json:"tier_code"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null" json:"payment_method"`

	Status MissionStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Report *CertificationReport `gorm:"foreignKey:MissionID" json:"report,omitempty"`
}

// GetUserID implements policy.Ownable.
func (m *Mission) GetUserID() uint {
	return m.UserID
}

// IsTerminal reports whether no further transition is allowed.
func (m *Mission) IsTerminal() bool {
	return m.Status == MissionStatusCompleted || m.Status == MissionStatusCancelled
}

// CanTransitionTo checks the status state machine:
// pending -> in_progress -> completed, with cancelled reachable from
// pending or in_progress. Completed and cancelled are terminal.
func (m *Mission) CanTransitionTo(next MissionStatus) bool {
	switch m.Status {
	case MissionStatusPending:
		return next == MissionStatusInProgress || next == MissionStatusCancelled
	case MissionStatusInProgress:
		return next == MissionStatusCompleted || next == MissionStatusCancelled
	}
	return false
}

// GenerateMissionReference generates the next mission reference for a
// partner, scoped to the current year.
// Format: CERT-YYYY-NNNN (e.g. CERT-2026-0001).
func GenerateMissionReference(db *gorm.DB, userID uint, year int) (string, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var count int64
	err := db.Model(&Mission{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CERT-%d-%04d", year, count+1), nil
}
