package models

import "time"

// Document review states.
const (
	DocumentStatusPending  = "pending"
	DocumentStatusApproved = "approved"
	DocumentStatusRejected = "rejected"
)

// Document is the metadata row for a file kept in blob storage.
type Document struct {
	BaseModel

	Name         string    `gorm:"size:255;not null" json:"name"`
	Category     string    `gorm:"size:64;not null;index" json:"category"`
	ProjectID    string    `gorm:"size:36;not null;index" json:"project_id"`
	Project      *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UploadedByID string    `gorm:"size:36;not null;index" json:"uploaded_by"`
	FilePath     string    `gorm:"size:512;not null;uniqueIndex" json:"file_path"`
	Type         string    `gorm:"size:32" json:"type"`
	Size         string    `gorm:"size:32" json:"size"`
	SizeBytes    int64     `json:"size_bytes"`
	Version      int       `gorm:"default:1" json:"version"`
	Status       string    `gorm:"size:16;not null" json:"status"`
	UploadDate   time.Time `gorm:"index" json:"upload_date"`
}
