package models

import "time"

// Project types offered by the dashboard.
const (
	ProjectTypeResidential = "Residential"
	ProjectTypeCommercial  = "Commercial"
)

// Project is a construction project. Dates are optional.
type Project struct {
	BaseModel

	Name      string     `gorm:"size:255;not null;index" json:"name"`
	Type      string     `gorm:"size:32;not null" json:"type"`
	Location  string     `json:"location"`
	ManagerID *string    `gorm:"size:36;index" json:"manager_id"`
	Manager   *User      `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}
