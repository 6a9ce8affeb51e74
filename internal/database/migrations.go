package database

import (
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// Referenced tables come before the tables holding the foreign keys.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.CacheEntry{},
		&models.Project{},
		&models.Phase{},
		&models.Vendor{},
		&models.Material{},
		&models.Expense{},
		&models.Document{},
	)
}
