package models

import "time"

// Document is an uploaded file (item photos, purchase invoices) tied to
// an owning entity.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerType string `gorm:"size:40" json:"owner_type"` // "Mission", "Client"
	OwnerID   uint   `gorm:"index" json:"owner_id"`

	Name     string `gorm:"size:255;not null" json:"name"`
	Path     string `gorm:"size:500;not null" json:"path"`
	MimeType string `gorm:"size:100" json:"mime_type"`
	Size     int64  `json:"size"`

	UploadedBy uint `gorm:"index" json:"uploaded_by"`
}
