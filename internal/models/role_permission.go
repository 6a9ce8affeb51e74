package models

import "time"

// RolePermission grants a permission to a role. A row exists or it does not;
// the composite key keeps each pair unique.
type RolePermission struct {
	RoleID       string    `gorm:"primaryKey;size:36" json:"role_id"`
	PermissionID string    `gorm:"primaryKey;size:36;index" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`

	Role       *Role       `gorm:"foreignKey:RoleID" json:"-"`
	Permission *Permission `gorm:"foreignKey:PermissionID" json:"-"`
}

// TableName overrides the default table name for GORM.
func (RolePermission) TableName() string {
	return "role_permissions"
}
