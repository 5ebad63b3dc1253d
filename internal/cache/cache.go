// ABOUTME: Local key-value cache on an embedded badger database.
// ABOUTME: Holds the daily reset marker, the workout state and the sync journal.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/habito/internal/models"
	"go.uber.org/zap"
)

// Namespace prefixes every key the app writes.
const Namespace = "habito_plus"

// WorkoutStateKey is the fixed key of the wholesale workout state.
const WorkoutStateKey = Namespace + "_workout_state"

// JournalPrefix prefixes sync journal entries.
const JournalPrefix = Namespace + "_sync_"

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("cache key not found")

// Cache is a badger-backed key-value store.
type Cache struct {
	db       *badger.DB
	inMemory bool
}

// Open opens or creates a cache in dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// OpenInMemory opens a cache that lives only as long as the process.
func OpenInMemory() (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open memory cache: %w", err)
	}
	return &Cache{db: db, inMemory: true}, nil
}

// OpenOrMemory opens the cache in dir, falling back to memory when the
// directory is locked by another habito process.
func OpenOrMemory(dir string, logger *zap.Logger) (*Cache, error) {
	c, err := Open(dir)
	if err == nil {
		return c, nil
	}
	logger.Warn("local cache unavailable, using memory", zap.String("dir", dir), zap.Error(err))
	return OpenInMemory()
}

// DefaultDir returns the cache directory under a data dir.
func DefaultDir(dataDir string) string {
	return filepath.Join(dataDir, "cache")
}

// InMemory reports whether the cache is process-local.
func (c *Cache) InMemory() bool {
	return c.inMemory
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the value stored under key.
func (c *Cache) Get(key []byte) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

// Set stores value under key.
func (c *Cache) Set(key, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes key. Missing keys are not an error.
func (c *Cache) Delete(key []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Keys lists every key.
func (c *Cache) Keys() ([][]byte, error) {
	return c.keysWithPrefix(nil)
}

func (c *Cache) keysWithPrefix(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Sync flushes writes to disk.
func (c *Cache) Sync() error {
	if c.inMemory {
		return nil
	}
	return c.db.Sync()
}

// IsReadOnly reports whether writes are refused. The cache is always writable.
func (c *Cache) IsReadOnly() bool {
	return false
}

// SaveJSON stores v as JSON under key.
func (c *Cache) SaveJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set([]byte(key), data)
}

// LoadJSON decodes the value under key into v, reporting whether it existed.
func (c *Cache) LoadJSON(key string, v any) (bool, error) {
	data, err := c.Get([]byte(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// ScanPrefix returns every key/value under prefix.
func (c *Cache) ScanPrefix(prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[string(item.Key())] = val
		}
		return nil
	})
	return out, err
}

// LastResetKey is the per-user key of the daily reset marker.
func LastResetKey(userID string) string {
	return Namespace + "_last_reset_" + userID
}

// LastReset returns the ISO day of the last daily reset, or "" if none.
func (c *Cache) LastReset(userID string) (string, error) {
	data, err := c.Get([]byte(LastResetKey(userID)))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read last reset: %w", err)
	}
	return string(data), nil
}

// SetLastReset records the ISO day of a daily reset.
func (c *Cache) SetLastReset(userID, date string) error {
	if err := c.Set([]byte(LastResetKey(userID)), []byte(date)); err != nil {
		return fmt.Errorf("write last reset: %w", err)
	}
	return nil
}

// LoadWorkoutState returns the stored workout state, or nil if none.
func (c *Cache) LoadWorkoutState(_ context.Context) (*models.UserWorkoutState, error) {
	var st models.UserWorkoutState
	ok, err := c.LoadJSON(WorkoutStateKey, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// SaveWorkoutState replaces the stored workout state.
func (c *Cache) SaveWorkoutState(_ context.Context, st *models.UserWorkoutState) error {
	return c.SaveJSON(WorkoutStateKey, st)
}
