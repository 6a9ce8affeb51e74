package models

// Vendor supplies materials.
type Vendor struct {
	BaseModel

	Name         string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
}
