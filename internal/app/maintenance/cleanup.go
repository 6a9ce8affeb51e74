package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Mathew1327/Construction-tracker/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultSchedule           = "@hourly"
)

// SessionCleaner removes expired and revoked refresh sessions.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// AuditCleaner prunes audit rows past the retention window.
type AuditCleaner interface {
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// CachePurger drops expired rows from the database-backed cache.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner coordinates background maintenance: expired sessions, stale audit
// logs and expired cache entries.
type Cleaner struct {
	sessions  SessionCleaner
	audit     AuditCleaner
	cache     CachePurger
	cron      *cron.Cron
	log       *zap.Logger
	retention int
	schedule  string
	timeout   time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification shared by all jobs.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithCachePurger enables purging of the database cache. Redis expires keys on its own.
func WithCachePurger(p CachePurger) Option {
	return func(cleaner *Cleaner) {
		cleaner.cache = p
	}
}

// NewCleaner constructs a Cleaner. Any nil dependency results in the
// corresponding cleanup job being skipped.
func NewCleaner(sessions SessionCleaner, audit AuditCleaner, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:  sessions,
		audit:     audit,
		retention: defaultAuditRetentionDays,
		schedule:  defaultSchedule,
		timeout:   time.Minute,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

func (c *Cleaner) enabled() bool {
	return c.sessions != nil || c.audit != nil || c.cache != nil
}

// Start registers the cleanup job with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled() {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := c.RunOnce(ctx); err != nil {
			c.log.Warn("maintenance run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially and reports
// every failure, not just the first.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if n, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		} else if n > 0 {
			c.log.Info("expired sessions removed", zap.Int64("count", n))
		}
	}

	if c.audit != nil && c.retention > 0 {
		if n, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		} else if n > 0 {
			c.log.Info("audit logs pruned", zap.Int64("count", n), zap.Int("retention_days", c.retention))
		}
	}

	if c.cache != nil {
		if _, err := c.cache.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
