package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/cache"
	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/pkg/crypto"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
	"github.com/Mathew1327/Construction-tracker/pkg/logger"
	"github.com/Mathew1327/Construction-tracker/pkg/metrics"
)

var (
	// ErrAccountInactive is returned when a deactivated user signs in.
	ErrAccountInactive = apperrors.New("ACCOUNT_INACTIVE", "Account is inactive", http.StatusForbidden)
	// ErrTooManyAttempts is returned once the login attempt budget is spent.
	ErrTooManyAttempts = apperrors.New("TOO_MANY_ATTEMPTS", "Too many login attempts, try again later", http.StatusTooManyRequests)
)

// LoginThrottle bounds failed and successful sign-ins per email address.
type LoginThrottle struct {
	Store       cache.Store
	MaxAttempts int
	Window      time.Duration
}

// AuthenticateInput is an email and password sign-in.
type AuthenticateInput struct {
	Email    string
	Password string
}

// AuthService verifies credentials for local accounts.
type AuthService struct {
	db       *gorm.DB
	throttle LoginThrottle
	now      func() time.Time
}

// NewAuthService constructs an AuthService. A zero throttle disables rate limiting.
func NewAuthService(db *gorm.DB, throttle LoginThrottle) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if throttle.Window <= 0 {
		throttle.Window = 15 * time.Minute
	}
	return &AuthService{db: db, throttle: throttle, now: time.Now}, nil
}

// Authenticate checks the password and stamps last_login_at.
func (s *AuthService) Authenticate(ctx context.Context, input AuthenticateInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	if email == "" || input.Password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.checkThrottle(ctx, email); err != nil {
		metrics.AuthAttempts.WithLabelValues("throttled").Inc()
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, gatewayError("auth service: load user", err)
	}

	if !crypto.VerifyPassword(user.Password, input.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAccountInactive
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		return nil, gatewayError("auth service: stamp login", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

func (s *AuthService) checkThrottle(ctx context.Context, email string) error {
	if s.throttle.Store == nil || s.throttle.MaxAttempts <= 0 {
		return nil
	}
	count, _, err := s.throttle.Store.IncrementWithTTL(ctx, "login:"+strings.ToLower(email), s.throttle.Window)
	if err != nil {
		logger.WithModule("auth").Warn("login throttle unavailable", zap.Error(err))
		return nil
	}
	if count > int64(s.throttle.MaxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}
