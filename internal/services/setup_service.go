package services

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

// ErrAlreadyInitialized is returned when setup runs after the first account exists.
var ErrAlreadyInitialized = apperrors.New("ALREADY_INITIALIZED", "System already initialized", http.StatusConflict)

// SetupService bootstraps the first administrator account.
type SetupService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewSetupService constructs a SetupService.
func NewSetupService(db *gorm.DB, audit *AuditService) (*SetupService, error) {
	if db == nil {
		return nil, errors.New("setup service: db is required")
	}
	return &SetupService{db: db, auditService: audit}, nil
}

// Initialized reports whether any account exists.
func (s *SetupService) Initialized(ctx context.Context) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, gatewayError("setup service: count users", err)
	}
	return count > 0, nil
}

// Initialize creates the first user bound to the seeded Administrator role.
func (s *SetupService) Initialize(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := newPasswordUser(input.FullName, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return gatewayError("setup service: count users", err)
		}
		if count > 0 {
			return ErrAlreadyInitialized
		}

		var admin models.Role
		if err := tx.Take(&admin, "name = ?", permissions.AdministratorRole).Error; err != nil {
			return notFoundOr(ErrRoleNotFound, "setup service: load administrator role", err)
		}
		user.RoleID = &admin.ID

		if err := tx.Create(user).Error; err != nil {
			return gatewayError("setup service: create administrator", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "setup.initialize",
		Resource: user.ID,
		Result:   "success",
	})
	return user, nil
}
