package models

import "time"

// AuditLog records who changed what: mission status transitions,
// report section saves, role assignments.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID     uint   `gorm:"index" json:"user_id"`
	EntityType string `gorm:"size:40" json:"entity_type"` // "Mission", "CertificationReport", "User"
	EntityID   uint   `gorm:"index" json:"entity_id"`
	Action     string `gorm:"size:40" json:"action"` // "create", "status_change", "report_save", ...
	OldValue   string `gorm:"size:255" json:"old_value,omitempty"`
	NewValue   string `gorm:"size:255" json:"new_value,omitempty"`
}
