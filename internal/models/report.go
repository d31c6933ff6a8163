package models

import (
	"time"

	"github.com/certilux/cert-app/internal/report"
)

// CertificationReport holds the expert's inspection findings for one
// mission. The findings are a wide flat record keyed by field name;
// fields are decoded into tagged values once at the persistence
// boundary and stored as JSON. One report per mission, created lazily
// on the first section save.
type CertificationReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MissionID uint `gorm:"uniqueIndex;not null" json:"mission_id"`

	Fields report.FieldMap `gorm:"serializer:json" json:"fields"`
}

// MergeFields applies a partial section save on top of the stored
// record. Fields not present in the incoming map are untouched.
func (r *CertificationReport) MergeFields(incoming report.FieldMap) {
	r.Fields = r.Fields.Merge(incoming)
}
