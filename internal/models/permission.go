package models

// Permission is an atomic named capability such as "Manage Materials".
type Permission struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `json:"description"`
}
