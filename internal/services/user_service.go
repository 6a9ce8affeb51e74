package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	"github.com/Mathew1327/Construction-tracker/pkg/crypto"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/logger"
	"github.com/Mathew1327/Construction-tracker/pkg/mail"
)

const (
	noRoleLabel    = "N/A"
	noProjectLabel = "None"

	temporaryPasswordLength = 12
	minPasswordLength       = 8
)

// UserView is a user row joined with its role and project names.
type UserView struct {
	ID          string     `json:"id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	RoleID      *string    `json:"role_id"`
	RoleName    string     `json:"role_name"`
	ProjectID   *string    `json:"project_id"`
	ProjectName string     `json:"project_name"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type userRow struct {
	ID          string
	FullName    string
	Email       string
	RoleID      *string
	RoleName    *string
	ProjectID   *string
	ProjectName *string
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

func (r userRow) view() UserView {
	v := UserView{
		ID:          r.ID,
		FullName:    r.FullName,
		Email:       r.Email,
		RoleID:      r.RoleID,
		RoleName:    noRoleLabel,
		ProjectID:   r.ProjectID,
		ProjectName: noProjectLabel,
		IsActive:    r.IsActive,
		LastLoginAt: r.LastLoginAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.RoleName != nil && *r.RoleName != "" {
		v.RoleName = *r.RoleName
	}
	if r.ProjectName != nil && *r.ProjectName != "" {
		v.ProjectName = *r.ProjectName
	}
	return v
}

// ListUsersOptions filters ListUsers.
type ListUsersOptions struct {
	RoleName        string
	IncludeInactive bool
}

// CreateUserInput describes a team member added by an administrator.
type CreateUserInput struct {
	FullName  string
	Email     string
	RoleID    string
	ProjectID *string
}

// CreatedUser is returned from CreateUser. TemporaryPassword is set only when
// the welcome email could not be delivered.
type CreatedUser struct {
	User              *models.User `json:"user"`
	EmailSent         bool         `json:"email_sent"`
	TemporaryPassword string       `json:"temporary_password,omitempty"`
}

// RegisterInput describes a self-service signup. Signed up users have no role.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// UpdateUserInput enumerates mutable user attributes. A nil field is left
// unchanged; an empty RoleID or ProjectID clears the reference.
type UpdateUserInput struct {
	FullName  *string
	Email     *string
	RoleID    *string
	ProjectID *string
}

// UserService manages dashboard accounts and their role linkage.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
	checker      *permissions.Checker
	mailer       mail.Mailer
	loginURL     string
}

// UserServiceOption customises a UserService.
type UserServiceOption func(*UserService)

// WithWelcomeMailer sends a welcome email for administrator-created users.
func WithWelcomeMailer(mailer mail.Mailer, loginURL string) UserServiceOption {
	return func(s *UserService) {
		s.mailer = mailer
		s.loginURL = strings.TrimSpace(loginURL)
	}
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, audit *AuditService, checker *permissions.Checker, opts ...UserServiceOption) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	svc := &UserService{
		db:           db,
		auditService: audit,
		checker:      checker,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ResolveRoleName returns the display name of a role.
func (s *UserService) ResolveRoleName(ctx context.Context, roleID string) (string, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).Select("id", "name").Take(&role, "id = ?", strings.TrimSpace(roleID)).Error; err != nil {
		return "", notFoundOr(ErrRoleNotFound, "user service: resolve role", err)
	}
	return role.Name, nil
}

// ResolveEffectivePermissions returns what the user holds through their role.
// A user without a role, or whose role is inactive, holds nothing.
func (s *UserService) ResolveEffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.RoleID == nil {
		return []string{}, nil
	}

	if s.checker != nil {
		names, err := s.checker.RolePermissions(ctx, *user.RoleID)
		if err != nil {
			return nil, gatewayError("user service: effective permissions", err)
		}
		return names, nil
	}

	var role models.Role
	if err := s.db.WithContext(ctx).Take(&role, "id = ?", *user.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, gatewayError("user service: load role", err)
	}
	if !role.IsActive {
		return []string{}, nil
	}
	names, err := permissions.RolePermissionNames(s.db.WithContext(ctx), role.ID)
	if err != nil {
		return nil, gatewayError("user service: effective permissions", err)
	}
	return names, nil
}

// GetByID loads a user with its role.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").Take(&user, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		return nil, notFoundOr(ErrUserNotFound, "user service: load user", err)
	}
	return &user, nil
}

// GetView loads a single user joined with role and project names.
func (s *UserService) GetView(ctx context.Context, id string) (*UserView, error) {
	ctx = ensureContext(ctx)

	var rows []userRow
	if err := s.viewQuery(ctx).Where("users.id = ?", strings.TrimSpace(id)).Limit(1).Scan(&rows).Error; err != nil {
		return nil, gatewayError("user service: load user", err)
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}
	v := rows[0].view()
	return &v, nil
}

// ListUsers returns users with role and project names, newest first.
func (s *UserService) ListUsers(ctx context.Context, opts ListUsersOptions) ([]UserView, error) {
	ctx = ensureContext(ctx)

	query := s.viewQuery(ctx)
	if !opts.IncludeInactive {
		query = query.Where("users.is_active = ?", true)
	}
	if roleName := strings.TrimSpace(opts.RoleName); roleName != "" {
		query = query.Where("roles.name = ?", roleName)
	}

	var rows []userRow
	if err := query.Order("users.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, gatewayError("user service: list users", err)
	}

	views := make([]UserView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.view())
	}
	return views, nil
}

func (s *UserService) viewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.full_name, users.email, users.role_id, roles.name AS role_name, " +
			"users.project_id, projects.name AS project_name, users.is_active, users.last_login_at, users.created_at").
		Joins("LEFT JOIN roles ON roles.id = users.role_id").
		Joins("LEFT JOIN projects ON projects.id = users.project_id")
}

// CountUsers returns the number of accounts.
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, gatewayError("user service: count users", err)
	}
	return count, nil
}

// CreateUser adds a team member with a temporary password and emails it.
// Mail failures are logged; the account is still created.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*CreatedUser, error) {
	ctx = ensureContext(ctx)

	fullName := strings.TrimSpace(input.FullName)
	email := normaliseEmail(input.Email)
	roleID := strings.TrimSpace(input.RoleID)
	switch {
	case fullName == "":
		return nil, apperrors.NewValidation("full name is required")
	case email == "":
		return nil, apperrors.NewValidation("email is required")
	case roleID == "":
		return nil, apperrors.NewValidation("role is required")
	}

	role, err := s.requireActiveRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	projectID := optionalID(input.ProjectID)
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	tempPassword, err := crypto.GenerateToken(temporaryPasswordLength)
	if err != nil {
		return nil, err
	}
	hashed, err := crypto.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:  fullName,
		Email:     email,
		Password:  hashed,
		RoleID:    &role.ID,
		ProjectID: projectID,
		IsActive:  true,
	}
	if err := s.insertUser(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role

	result := &CreatedUser{User: user}
	result.EmailSent = s.sendWelcome(ctx, user, role.Name, tempPassword)
	if !result.EmailSent {
		result.TemporaryPassword = tempPassword
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.create",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{
			"email":      user.Email,
			"role_id":    role.ID,
			"email_sent": result.EmailSent,
		},
	})

	return result, nil
}

// Register creates a self-service account without a role.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := newPasswordUser(input.FullName, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.insertUser(ctx, user); err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "user.register",
		Resource: user.ID,
		Result:   "success",
	})
	return user, nil
}

// UpdateUser applies the non-nil fields of input.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperrors.NewValidation("full name is required")
		}
		updates["full_name"] = name
	}
	if input.Email != nil {
		email := normaliseEmail(*input.Email)
		if email == "" {
			return nil, apperrors.NewValidation("email is required")
		}
		updates["email"] = email
	}
	if input.RoleID != nil {
		if roleID := optionalID(input.RoleID); roleID == nil {
			updates["role_id"] = nil
		} else {
			role, err := s.requireActiveRole(ctx, *roleID)
			if err != nil {
				return nil, err
			}
			updates["role_id"] = role.ID
		}
	}
	if input.ProjectID != nil {
		projectID := optionalID(input.ProjectID)
		if err := s.requireProject(ctx, projectID); err != nil {
			return nil, err
		}
		if projectID == nil {
			updates["project_id"] = nil
		} else {
			updates["project_id"] = *projectID
		}
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("email is already registered")
		}
		return nil, gatewayError("user service: update user", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.update",
		Resource: user.ID,
		Result:   "success",
		Metadata: updates,
	})

	return s.GetByID(ctx, user.ID)
}

// DeactivateUser soft deletes the account and revokes its sessions.
func (s *UserService) DeactivateUser(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
			return gatewayError("user service: deactivate user", err)
		}
		if err := tx.Model(&models.Session{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", time.Now()).Error; err != nil {
			return gatewayError("user service: revoke sessions", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "user.deactivate",
		Resource: user.ID,
		Result:   "success",
	})
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(user.Password, current) {
		return apperrors.ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return apperrors.NewValidation("password must be at least 8 characters")
	}

	hashed, err := crypto.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashed).Error; err != nil {
		return gatewayError("user service: change password", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "user.password.change",
		Resource: user.ID,
		Result:   "success",
	})
	return nil
}

func (s *UserService) insertUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return apperrors.NewValidation("email is already registered")
		}
		return gatewayError("user service: create user", err)
	}
	return nil
}

func (s *UserService) requireActiveRole(ctx context.Context, roleID string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Take(&role, "id = ?", roleID).Error; err != nil {
		return nil, notFoundOr(ErrRoleNotFound, "user service: load role", err)
	}
	if !role.IsActive {
		return nil, apperrors.NewValidation("role is inactive")
	}
	return &role, nil
}

func (s *UserService) requireProject(ctx context.Context, projectID *string) error {
	if projectID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", *projectID).Count(&count).Error; err != nil {
		return gatewayError("user service: load project", err)
	}
	if count == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *UserService) sendWelcome(ctx context.Context, user *models.User, roleName, tempPassword string) bool {
	if s.mailer == nil {
		return false
	}
	msg := mail.WelcomeMessage(mail.WelcomeDetails{
		Name:              user.FullName,
		Email:             user.Email,
		RoleName:          roleName,
		TemporaryPassword: tempPassword,
		LoginURL:          s.loginURL,
	})
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.WithModule("users").Warn("failed to send welcome email",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return false
	}
	return true
}

func newPasswordUser(fullName, email, password string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normaliseEmail(email)
	switch {
	case fullName == "":
		return nil, apperrors.NewValidation("full name is required")
	case email == "":
		return nil, apperrors.NewValidation("email is required")
	case len(password) < minPasswordLength:
		return nil, apperrors.NewValidation("password must be at least 8 characters")
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		FullName: fullName,
		Email:    email,
		Password: hashed,
		IsActive: true,
	}, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
