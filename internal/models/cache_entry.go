package models

import "time"

// CacheEntry holds a cached value when no Redis instance is configured.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;column:cache_key;size:256"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name for GORM.
func (CacheEntry) TableName() string {
	return "cache_entries"
}
