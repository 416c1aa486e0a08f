// Package kvstore is the durable substrate under the session store: a
// single sqlite-backed key/value table with a hard capacity limit.
// Writes are all-or-nothing per key; a rejected write leaves the stored
// value untouched.
package kvstore

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
)

// ErrQuotaExceeded - the serialized payload would not fit the remaining
// capacity. The caller decides how to shed data.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// DefaultCapacity mirrors the ~10MB browser origin limit the kiosk
// originally lived with.
const DefaultCapacity int64 = 10 << 20

type record struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

func (record) TableName() string { return "kv_records" }

type Store struct {
	db       *gorm.DB
	capacity int64
}

// Open - opens (or creates) the store file and migrates the schema.
func Open(path string, capacity int64) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore open %s: %w", path, err)
	}

	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("kvstore enable WAL: %w", err)
	}

	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("kvstore migrate: %w", err)
	}

	return &Store{db: db, capacity: capacity}, nil
}

// Get - returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool, error) {
	var rec record
	err := s.db.First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore get %s: %w", key, err)
	}
	return rec.Value, true, nil
}

// Set - upserts the value if it fits. On ErrQuotaExceeded nothing is
// written and any previous value for the key survives.
func (s *Store) Set(key, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		used, err := usedBytes(tx)
		if err != nil {
			return fmt.Errorf("kvstore set %s: %w", key, err)
		}

		var current int64
		err = tx.Model(&record{}).
			Select("COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0)").
			Where("key = ?", key).
			Scan(&current).Error
		if err != nil {
			return fmt.Errorf("kvstore set %s: %w", key, err)
		}

		projected := used - current + int64(len(key)+len(value))
		if projected > s.capacity {
			return fmt.Errorf("kvstore set %s (%d of %d bytes): %w",
				key, projected, s.capacity, ErrQuotaExceeded)
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&record{Key: key, Value: value}).Error
		if err != nil {
			return fmt.Errorf("kvstore set %s: %w", key, err)
		}
		return nil
	})
}

// Remove - deletes the key. Missing keys are not an error.
func (s *Store) Remove(key string) error {
	if err := s.db.Delete(&record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kvstore remove %s: %w", key, err)
	}
	return nil
}

// Usage - aggregate byte usage against the configured capacity.
func (s *Store) Usage() (quota.Usage, error) {
	used, err := usedBytes(s.db)
	if err != nil {
		return quota.Usage{}, fmt.Errorf("kvstore usage: %w", err)
	}
	return quota.Usage{
		UsedBytes:  used,
		LimitBytes: s.capacity,
		Percentage: float64(used) / float64(s.capacity) * 100,
	}, nil
}

func usedBytes(tx *gorm.DB) (int64, error) {
	var used int64
	err := tx.Model(&record{}).
		Select("COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0)").
		Scan(&used).Error
	return used, err
}
