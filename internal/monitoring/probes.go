package monitoring

import (
	"bytes"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/cache"
)

const cacheProbeKey = "health:probe"

// DatabaseProbe pings the database handle.
func DatabaseProbe(db *gorm.DB) Probe {
	return Probe{
		Name: "database",
		Run: func(ctx context.Context) error {
			if db == nil {
				return errors.New("database not configured")
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// CacheProbe writes and reads back a short-lived key.
func CacheProbe(store cache.Store) Probe {
	return Probe{
		Name: "cache",
		Run: func(ctx context.Context) error {
			if store == nil {
				return errors.New("cache not configured")
			}
			want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
			if err := store.Set(ctx, cacheProbeKey, want, 10*time.Second); err != nil {
				return err
			}
			got, ok, err := store.Get(ctx, cacheProbeKey)
			if err != nil {
				return err
			}
			if !ok || !bytes.Equal(got, want) {
				return errors.New("cache read back a different value")
			}
			return nil
		},
	}
}
