package models

import "gorm.io/datatypes"

// Role is a named bundle of permissions. Roles are deactivated, never deleted.
type Role struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`

	// PermissionNames is derived from role_permissions on every assignment change.
	// It is never written from request payloads.
	PermissionNames datatypes.JSONSlice[string] `json:"permissions"`
}
