package models

import "time"

// Phase statuses.
const (
	PhaseStatusNotStarted = "Not Started"
	PhaseStatusInProgress = "In Progress"
	PhaseStatusCompleted  = "Completed"
)

// Phase is a scheduled stage of a project.
type Phase struct {
	BaseModel

	ProjectID string     `gorm:"size:36;not null;index" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	StartDate *time.Time `gorm:"index" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Status    string     `gorm:"size:32;not null" json:"status"`
}
