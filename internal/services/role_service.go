package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/logger"
)

// RoleFallback selects what happens to users holding a role being deactivated.
type RoleFallback string

const (
	// RoleFallbackUnassign clears role_id on affected users.
	RoleFallbackUnassign RoleFallback = "unassign"
	// RoleFallbackReassign moves affected users to another active role.
	RoleFallbackReassign RoleFallback = "reassign"
)

// Role list orderings.
const (
	RoleOrderCreated = "created"
	RoleOrderName    = "name"
)

// ListRolesOptions controls ListRoles.
type ListRolesOptions struct {
	IncludeInactive bool
	OrderBy         string
}

// CreateRoleInput describes the payload accepted by CreateRole.
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleInput describes mutable fields on a role. Grants are changed only
// through PermissionService.
type UpdateRoleInput struct {
	Name        string
	Description string
}

// DeactivateRoleInput carries the policy for users still assigned to the role.
type DeactivateRoleInput struct {
	Fallback         RoleFallback
	ReassignToRoleID string
}

// RoleService manages roles. Roles are deactivated, never deleted.
type RoleService struct {
	db           *gorm.DB
	auditService *AuditService
	checker      *permissions.Checker
	now          func() time.Time
}

// RoleServiceOption customises a RoleService.
type RoleServiceOption func(*RoleService)

// WithRoleClock overrides the clock used for role creation timestamps.
func WithRoleClock(now func() time.Time) RoleServiceOption {
	return func(s *RoleService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRoleService constructs a RoleService. The checker may be nil.
func NewRoleService(db *gorm.DB, audit *AuditService, checker *permissions.Checker, opts ...RoleServiceOption) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	svc := &RoleService{
		db:           db,
		auditService: audit,
		checker:      checker,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListActiveRoles returns active roles, newest first.
func (s *RoleService) ListActiveRoles(ctx context.Context) ([]models.Role, error) {
	return s.ListRoles(ctx, ListRolesOptions{})
}

// ListRoles returns roles ordered by creation (newest first) or by name.
func (s *RoleService) ListRoles(ctx context.Context, opts ListRolesOptions) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Role{})
	if !opts.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}

	switch strings.ToLower(strings.TrimSpace(opts.OrderBy)) {
	case RoleOrderName:
		query = query.Order("name ASC")
	case "", RoleOrderCreated:
		query = query.Order("created_at DESC").Order("name ASC")
	default:
		return nil, apperrors.NewValidation("order must be one of: created, name")
	}

	roles := make([]models.Role, 0)
	if err := query.Find(&roles).Error; err != nil {
		return nil, gatewayError("role service: list roles", err)
	}
	return roles, nil
}

// GetRole loads a role by id.
func (s *RoleService) GetRole(ctx context.Context, id string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).Take(&role, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		return nil, notFoundOr(ErrRoleNotFound, "role service: load role", err)
	}
	return &role, nil
}

// CreateRole persists an active role and grants its initial permissions in one
// transaction. Nothing is written when the name is blank or taken, or when any
// permission name does not resolve.
func (s *RoleService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("role name is required")
	}
	permissionNames := normaliseNames(input.Permissions)

	role := &models.Role{
		BaseModel:   models.BaseModel{CreatedAt: s.now()},
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Role{}).Where("name = ?", name).Count(&taken).Error; err != nil {
			return gatewayError("role service: check name", err)
		}
		if taken > 0 {
			return apperrors.NewValidation("role name already exists")
		}

		perms, err := resolvePermissionsByName(tx, permissionNames)
		if err != nil {
			return err
		}

		if err := tx.Create(role).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewValidation("role name already exists")
			}
			return gatewayError("role service: create role", err)
		}

		for _, perm := range perms {
			if err := grantPermission(tx, role.ID, perm.ID); err != nil {
				return err
			}
		}

		names, err := permissions.RefreshRoleCache(tx, role.ID)
		if err != nil {
			return gatewayError("role service: derive permissions", err)
		}
		role.PermissionNames = names
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.create",
		Resource: role.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name":        role.Name,
			"permissions": []string(role.PermissionNames),
		},
	})

	return role, nil
}

// UpdateRole overwrites the name and description. There is no concurrency
// token; the last writer wins.
func (s *RoleService) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("role name is required")
	}

	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem && name != role.Name {
		return nil, ErrSystemRoleImmutable
	}

	updates := map[string]any{
		"name":        name,
		"description": strings.TrimSpace(input.Description),
	}
	if err := s.db.WithContext(ctx).Model(role).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("role name already exists")
		}
		return nil, gatewayError("role service: update role", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.update",
		Resource: role.ID,
		Result:   "success",
		Metadata: updates,
	})

	return s.GetRole(ctx, role.ID)
}

// DeactivateRole marks the role inactive. Deactivating an inactive role is a
// no-op. Users still assigned to the role must be handled by an explicit
// fallback policy.
func (s *RoleService) DeactivateRole(ctx context.Context, id string, input DeactivateRoleInput) error {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)

	var (
		changed  bool
		affected int64
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&role, "id = ?", id).Error; err != nil {
			return notFoundOr(ErrRoleNotFound, "role service: load role", err)
		}
		if !role.IsActive {
			return nil
		}
		if role.IsSystem {
			return ErrSystemRoleImmutable
		}

		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&affected).Error; err != nil {
			return gatewayError("role service: count role users", err)
		}
		if affected > 0 {
			if err := applyRoleFallback(tx, id, input); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Role{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			return gatewayError("role service: deactivate role", err)
		}
		changed = true
		return nil
	})
	if err != nil || !changed {
		return err
	}

	if err := s.checker.Invalidate(ctx, id); err != nil {
		logger.WithModule("roles").Warn("failed to invalidate permission cache", zap.String("role_id", id), zap.Error(err))
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "role.deactivate",
		Resource: id,
		Result:   "success",
		Metadata: map[string]any{
			"fallback":       string(input.Fallback),
			"reassign_to":    input.ReassignToRoleID,
			"affected_users": affected,
		},
	})
	return nil
}

func applyRoleFallback(tx *gorm.DB, roleID string, input DeactivateRoleInput) error {
	switch input.Fallback {
	case "":
		return apperrors.NewValidation("role is assigned to users; choose fallback unassign or reassign")
	case RoleFallbackUnassign:
		if err := tx.Model(&models.User{}).Where("role_id = ?", roleID).Update("role_id", nil).Error; err != nil {
			return gatewayError("role service: unassign users", err)
		}
		return nil
	case RoleFallbackReassign:
		target := strings.TrimSpace(input.ReassignToRoleID)
		if target == "" {
			return apperrors.NewValidation("reassign_to_role_id is required for reassign")
		}
		if target == roleID {
			return apperrors.NewValidation("cannot reassign users to the role being deactivated")
		}
		var next models.Role
		if err := tx.Take(&next, "id = ?", target).Error; err != nil {
			return notFoundOr(ErrRoleNotFound, "role service: load reassignment role", err)
		}
		if !next.IsActive {
			return apperrors.NewValidation("reassignment role must be active")
		}
		if err := tx.Model(&models.User{}).Where("role_id = ?", roleID).Update("role_id", target).Error; err != nil {
			return gatewayError("role service: reassign users", err)
		}
		return nil
	default:
		return apperrors.NewValidation(fmt.Sprintf("unknown fallback %q", input.Fallback))
	}
}
