package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/cache"
	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/pkg/logger"
	"github.com/Mathew1327/Construction-tracker/pkg/metrics"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	roleCachePrefix  = "perm:role:"
	generationPrefix = "perm:gen:"

	// Generation counters outlive every cached entry so a counter never
	// restarts while entries stamped with its old values remain.
	minGenerationTTL = 24 * time.Hour
)

type cachedGrants struct {
	Generation int64    `json:"gen"`
	Names      []string `json:"names"`
}

// Checker answers whether a user holds a permission through their role.
// Grants are read from role_permissions; an optional cache.Store memoises the
// per-role result until Invalidate is called or the TTL lapses. Each entry is
// stamped with the role's generation as read before the database lookup, and
// Invalidate bumps the generation, so a lookup racing a grant change cannot
// leave its stale result in service.
type Checker struct {
	db    *gorm.DB
	cache cache.Store
	ttl   time.Duration
}

// CheckerOption customises a Checker.
type CheckerOption func(*Checker)

// WithCache enables the per-role permission cache.
func WithCache(store cache.Store, ttl time.Duration) CheckerOption {
	return func(c *Checker) {
		c.cache = store
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB, opts ...CheckerOption) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	c := &Checker{db: db, ttl: defaultCacheTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check reports whether the user's role grants permission. Unknown or inactive
// users and users without an active role hold nothing.
func (c *Checker) Check(ctx context.Context, userID, permission string) (bool, error) {
	permission = strings.TrimSpace(permission)
	if permission == "" {
		return false, errors.New("permission checker: permission is required")
	}

	granted, err := c.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, name := range granted {
		if name == permission {
			return true, nil
		}
	}
	return false, nil
}

// GetUserPermissions returns the sorted permission names the user currently holds.
func (c *Checker) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	var user models.User
	err := c.db.WithContext(ctx).
		Select("id", "role_id", "is_active").
		Take(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}
	if !user.IsActive || user.RoleID == nil {
		return []string{}, nil
	}

	return c.RolePermissions(ctx, *user.RoleID)
}

// RolePermissions returns what an active role grants. Inactive or missing roles
// grant nothing.
func (c *Checker) RolePermissions(ctx context.Context, roleID string) ([]string, error) {
	ctx = ensureContext(ctx)

	names, generation, ok := c.cached(ctx, roleID)
	if ok {
		return names, nil
	}

	var role models.Role
	err := c.db.WithContext(ctx).Select("id", "is_active").Take(&role, "id = ?", roleID).Error
	names = []string{}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("permission checker: load role: %w", err)
	case role.IsActive:
		names, err = RolePermissionNames(c.db.WithContext(ctx), roleID)
		if err != nil {
			return nil, err
		}
	}

	c.store(ctx, roleID, generation, names)
	return names, nil
}

// Invalidate drops cached grants for the given roles and advances their
// generation so results read before the change are never served.
func (c *Checker) Invalidate(ctx context.Context, roleIDs ...string) error {
	if c == nil || c.cache == nil || len(roleIDs) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	var errs error
	keys := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		keys[i] = roleCachePrefix + id
		if _, _, err := c.cache.IncrementWithTTL(ctx, generationPrefix+id, c.generationTTL()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("permission checker: bump generation for role %s: %w", id, err))
		}
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("permission checker: drop cached grants: %w", err))
	}
	return errs
}

func (c *Checker) generationTTL() time.Duration {
	if ttl := 10 * c.ttl; ttl > minGenerationTTL {
		return ttl
	}
	return minGenerationTTL
}

// generation reads the role's current generation. A missing counter reads as zero.
func (c *Checker) generation(ctx context.Context, roleID string) (int64, error) {
	raw, ok, err := c.cache.Get(ctx, generationPrefix+roleID)
	if err != nil || !ok {
		return 0, err
	}
	value, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("permission checker: parse generation: %w", err)
	}
	return value, nil
}

// cached returns the memoised grants when they were stored under the current
// generation. The generation is returned either way so a miss can be stored
// against the value observed before the database read.
func (c *Checker) cached(ctx context.Context, roleID string) ([]string, int64, bool) {
	if c.cache == nil {
		return nil, 0, false
	}

	log := logger.WithModule("permissions")
	generation, err := c.generation(ctx, roleID)
	if err != nil {
		log.Warn("permission cache generation read failed", zap.String("role_id", roleID), zap.Error(err))
		metrics.PermissionCacheLookups.WithLabelValues("error").Inc()
		return nil, -1, false
	}

	raw, ok, err := c.cache.Get(ctx, roleCachePrefix+roleID)
	if err != nil {
		log.Warn("permission cache read failed", zap.String("role_id", roleID), zap.Error(err))
		metrics.PermissionCacheLookups.WithLabelValues("error").Inc()
		return nil, -1, false
	}
	if !ok {
		metrics.PermissionCacheLookups.WithLabelValues("miss").Inc()
		return nil, generation, false
	}

	var entry cachedGrants
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Generation != generation {
		metrics.PermissionCacheLookups.WithLabelValues("miss").Inc()
		return nil, generation, false
	}
	metrics.PermissionCacheLookups.WithLabelValues("hit").Inc()
	if entry.Names == nil {
		entry.Names = []string{}
	}
	return entry.Names, generation, true
}

// store memoises names under generation. A negative generation means the
// cache could not be read and nothing is stored.
func (c *Checker) store(ctx context.Context, roleID string, generation int64, names []string) {
	if c.cache == nil || generation < 0 {
		return
	}
	payload, err := json.Marshal(cachedGrants{Generation: generation, Names: names})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, roleCachePrefix+roleID, payload, c.ttl); err != nil {
		logger.WithModule("permissions").Warn("permission cache write failed", zap.String("role_id", roleID), zap.Error(err))
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
