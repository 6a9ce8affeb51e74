package permissions

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
)

// RolePermissionNames reads the permission names granted to a role from
// role_permissions, ordered by name. It works for inactive roles.
func RolePermissionNames(db *gorm.DB, roleID string) ([]string, error) {
	names := make([]string, 0)
	err := db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("permission: load role %s grants: %w", roleID, err)
	}
	return names, nil
}

// RefreshRoleCache rewrites roles.permission_names from role_permissions.
// Call it with the transaction that changed the grants.
func RefreshRoleCache(db *gorm.DB, roleID string) ([]string, error) {
	names, err := RolePermissionNames(db, roleID)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Role{}).
		Where("id = ?", roleID).
		Update("permission_names", datatypes.JSONSlice[string](names)).Error; err != nil {
		return nil, fmt.Errorf("permission: refresh role %s cache: %w", roleID, err)
	}
	return names, nil
}
