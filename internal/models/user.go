package models

import "time"

// User is a dashboard account. It references at most one role.
type User struct {
	BaseModel

	FullName string `gorm:"size:255;not null" json:"full_name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `json:"-"`

	RoleID *string `gorm:"size:36;index" json:"role_id"`
	Role   *Role   `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	// ProjectID is the project the user is assigned to on site. It is kept as a
	// plain column because projects already reference users through manager_id.
	ProjectID *string `gorm:"size:36;index" json:"project_id"`

	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
}
