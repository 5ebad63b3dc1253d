// ABOUTME: Charm KV backend for habito: a process-wide client over kv.KV.
// ABOUTME: Writes push to the Charm host unless another process holds the db.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/habito/internal/storage"
)

const (
	dbName      = "habito"
	defaultHost = "charm.2389.dev"

	ActivityPrefix = "activity:"
)

var errReadOnly = errors.New("charm store is read-only: another habito process holds the lock")

// Store is the key-value surface the client needs. *kv.KV satisfies it.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	IsReadOnly() bool
	Close() error
}

// Client implements storage.Repository on a Charm KV store.
type Client struct {
	mu       sync.RWMutex
	kv       Store
	autoSync bool
}

var _ storage.Repository = (*Client)(nil)

// NewClient wraps an already opened store. Auto sync starts disabled.
func NewClient(store Store) *Client {
	return &Client{kv: store}
}

// InitClient opens the shared habito KV database once per process and pulls
// remote changes. Later calls return the same client or error.
var InitClient = sync.OnceValues(openShared)

func openShared() (*Client, error) {
	if _, ok := os.LookupEnv("CHARM_HOST"); !ok {
		if err := os.Setenv("CHARM_HOST", defaultHost); err != nil {
			return nil, fmt.Errorf("set charm host: %w", err)
		}
	}
	store, err := kv.OpenWithDefaultsFallback(dbName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv %q: %w", dbName, err)
	}
	c := &Client{kv: store, autoSync: true}
	_ = c.Sync()
	return c, nil
}

// ID returns the Charm account id linked on this machine.
func ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv == nil {
		return nil
	}
	return c.kv.Close()
}

// IsReadOnly reports whether the store was opened without the write lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync exchanges changes with the Charm host. A read-only store has nothing
// to push and skips it.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	c.autoSync = enabled
	c.mu.Unlock()
}

func (c *Client) set(key string, data []byte) error {
	return c.mutate(func(s Store) error { return s.Set([]byte(key), data) })
}

func (c *Client) delete(key string) error {
	return c.mutate(func(s Store) error { return s.Delete([]byte(key)) })
}

// mutate runs op under the write lock and pushes afterwards when auto sync
// is on. A failed push leaves the local write in place.
func (c *Client) mutate(op func(Store) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv.IsReadOnly() {
		return errReadOnly
	}
	if err := op(c.kv); err != nil {
		return err
	}
	if c.autoSync {
		_ = c.kv.Sync()
	}
	return nil
}

func (c *Client) get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Get([]byte(key))
}

// scan calls fn for every key starting with prefix. Callers hold c.mu.
func (c *Client) scan(prefix string, fn func(key []byte) error) error {
	keys, err := c.kv.Keys()
	if err != nil {
		return err
	}
	p := []byte(prefix)
	for _, k := range keys {
		if !bytes.HasPrefix(k, p) {
			continue
		}
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

// listByPrefix returns the values stored under prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var vals [][]byte
	err := c.scan(prefix, func(k []byte) error {
		v, err := c.kv.Get(k)
		if err != nil {
			return err
		}
		vals = append(vals, v)
		return nil
	})
	return vals, err
}

// keysByPrefix returns the ids of keys under typePrefix whose id starts
// with idPrefix.
func (c *Client) keysByPrefix(typePrefix, idPrefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []string
	err := c.scan(typePrefix+idPrefix, func(k []byte) error {
		ids = append(ids, extractID(string(k), typePrefix))
		return nil
	})
	return ids, err
}

func unmarshalJSON[T any](data []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func extractID(key, prefix string) string {
	return strings.TrimPrefix(key, prefix)
}
