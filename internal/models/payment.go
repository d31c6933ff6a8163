package models

import "time"

// PaymentStatus tracks settlement of a mission's payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment records the payment collected (or to collect) for a mission.
// In-shop methods are recorded as paid on intake; the online method
// stays pending until the processor callback settles it.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MissionID uint          `gorm:"index;not null" json:"mission_id"`
	Method    PaymentMethod `gorm:"size:20;not null" json:"method"`
	Amount    float64       `gorm:"not null" json:"amount"`
	Currency  string        `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Status    PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	Comment string `gorm:"size:500" json:"comment,omitempty"`
}
