package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mathew1327/Construction-tracker/internal/models"
)

// Sync inserts catalog permissions missing from the database. Existing rows are
// left untouched.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)

	defs := All()
	if len(defs) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range defs {
			record := models.Permission{
				Name:        def.Name,
				Description: def.Description,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&record).Error; err != nil {
				return fmt.Errorf("permission: sync %s: %w", def.Name, err)
			}
		}
		return nil
	})
}

// SeedAdministrator ensures the Administrator role exists, is active and holds
// every permission in the table.
func SeedAdministrator(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		err := tx.Where("name = ?", AdministratorRole).Take(&role).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			role = models.Role{
				Name:        AdministratorRole,
				Description: "Full system access",
				IsActive:    true,
				IsSystem:    true,
			}
			if err := tx.Create(&role).Error; err != nil {
				return fmt.Errorf("permission: create administrator role: %w", err)
			}
		case err != nil:
			return fmt.Errorf("permission: load administrator role: %w", err)
		}

		var permissionIDs []string
		if err := tx.Model(&models.Permission{}).Pluck("id", &permissionIDs).Error; err != nil {
			return fmt.Errorf("permission: list permissions: %w", err)
		}

		for _, id := range permissionIDs {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.RolePermission{RoleID: role.ID, PermissionID: id}).Error; err != nil {
				return fmt.Errorf("permission: grant administrator: %w", err)
			}
		}

		_, err = RefreshRoleCache(tx, role.ID)
		return err
	})
}

// Seed is the database seeder for the permission catalog and Administrator role.
func Seed(db *gorm.DB) error {
	ctx := context.Background()
	if err := Sync(ctx, db); err != nil {
		return err
	}
	return SeedAdministrator(ctx, db)
}
