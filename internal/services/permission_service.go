package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/logger"
	"github.com/Mathew1327/Construction-tracker/pkg/metrics"
)

// PermissionService reads the permission catalog and grants or revokes
// permissions on roles. role_permissions is the source of truth; the
// roles.permission_names column is rewritten in the same transaction.
type PermissionService struct {
	db           *gorm.DB
	auditService *AuditService
	checker      *permissions.Checker
}

// NewPermissionService constructs a PermissionService. The checker may be nil.
func NewPermissionService(db *gorm.DB, audit *AuditService, checker *permissions.Checker) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	return &PermissionService{
		db:           db,
		auditService: audit,
		checker:      checker,
	}, nil
}

// ListPermissions returns the full catalog ordered by name.
func (s *PermissionService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	perms := make([]models.Permission, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&perms).Error; err != nil {
		return nil, gatewayError("permission service: list permissions", err)
	}
	return perms, nil
}

// ResolvePermission looks a permission up by name. An unknown name yields an
// error matching ErrPermissionNotFound.
func (s *PermissionService) ResolvePermission(ctx context.Context, name string) (*models.Permission, error) {
	ctx = ensureContext(ctx)
	return resolvePermission(s.db.WithContext(ctx), name)
}

// AssignPermission grants the named permission to the role. Granting an
// already granted permission succeeds without writing a second row.
func (s *PermissionService) AssignPermission(ctx context.Context, roleID, permissionName string) error {
	ctx = ensureContext(ctx)
	roleID = strings.TrimSpace(roleID)

	var perm *models.Permission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}

		var err error
		perm, err = resolvePermission(tx, permissionName)
		if err != nil {
			return err
		}

		if err := grantPermission(tx, roleID, perm.ID); err != nil {
			return err
		}
		if _, err := permissions.RefreshRoleCache(tx, roleID); err != nil {
			return gatewayError("permission service: derive permissions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterChange(ctx, "assign", roleID, perm.Name)
	return nil
}

// RemovePermission revokes the named permission from the role. Revoking a
// permission the role does not hold succeeds.
func (s *PermissionService) RemovePermission(ctx context.Context, roleID, permissionName string) error {
	ctx = ensureContext(ctx)
	roleID = strings.TrimSpace(roleID)

	var perm *models.Permission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}

		var err error
		perm, err = resolvePermission(tx, permissionName)
		if err != nil {
			return err
		}

		if err := tx.Where("role_id = ? AND permission_id = ?", roleID, perm.ID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return gatewayError("permission service: remove permission", err)
		}
		if _, err := permissions.RefreshRoleCache(tx, roleID); err != nil {
			return gatewayError("permission service: derive permissions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterChange(ctx, "remove", roleID, perm.Name)
	return nil
}

// EffectivePermissions returns the names granted to the role, sorted. Inactive
// roles keep their grants and are answered the same way.
func (s *PermissionService) EffectivePermissions(ctx context.Context, roleID string) ([]string, error) {
	ctx = ensureContext(ctx)
	roleID = strings.TrimSpace(roleID)

	db := s.db.WithContext(ctx)
	if err := requireRole(db, roleID); err != nil {
		return nil, err
	}

	names, err := permissions.RolePermissionNames(db, roleID)
	if err != nil {
		return nil, gatewayError("permission service: effective permissions", err)
	}
	return names, nil
}

func (s *PermissionService) afterChange(ctx context.Context, action, roleID, permissionName string) {
	metrics.RolePermissionChanges.WithLabelValues(action).Inc()

	if err := s.checker.Invalidate(ctx, roleID); err != nil {
		logger.WithModule("permissions").Warn("failed to invalidate permission cache",
			zap.String("role_id", roleID),
			zap.Error(err))
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.permission." + action,
		Resource: roleID,
		Result:   "success",
		Metadata: map[string]any{
			"permission": permissionName,
		},
	})
}

func requireRole(db *gorm.DB, roleID string) error {
	if roleID == "" {
		return ErrRoleNotFound
	}
	var count int64
	if err := db.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return gatewayError("load role", err)
	}
	if count == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// lockRole takes the role row for update so concurrent grant changes on the
// same role serialise and each derives permission_names from committed grants.
func lockRole(tx *gorm.DB, roleID string) error {
	if roleID == "" {
		return ErrRoleNotFound
	}
	var role models.Role
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Take(&role, "id = ?", roleID).Error; err != nil {
		return notFoundOr(ErrRoleNotFound, "lock role", err)
	}
	return nil
}

func resolvePermission(db *gorm.DB, name string) (*models.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("permission name is required")
	}

	var perm models.Permission
	if err := db.Take(&perm, "name = ?", name).Error; err != nil {
		return nil, notFoundOr(permissionNotFound(name), "resolve permission", err)
	}
	return &perm, nil
}

// resolvePermissionsByName resolves every name or fails on the first unknown one.
func resolvePermissionsByName(db *gorm.DB, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var found []models.Permission
	if err := db.Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, gatewayError("resolve permissions", err)
	}

	byName := make(map[string]models.Permission, len(found))
	for _, perm := range found {
		byName[perm.Name] = perm
	}

	out := make([]models.Permission, 0, len(names))
	for _, name := range names {
		perm, ok := byName[name]
		if !ok {
			return nil, permissionNotFound(name)
		}
		out = append(out, perm)
	}
	return out, nil
}

// grantPermission inserts the pair, treating an existing pair as success.
func grantPermission(tx *gorm.DB, roleID, permissionID string) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error
	if err != nil && !isUniqueConstraintError(err) {
		return gatewayError("grant permission", err)
	}
	return nil
}
