package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// Cache keeps lookup results in a pebble store for a fixed time. A nil
// *Cache is valid and caches nothing.
type Cache struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

type cacheRecord struct {
	Stored time.Time       `json:"stored"`
	Data   json.RawMessage `json:"data"`
}

// OpenCache opens (or creates) the store under dir. An empty dir or a
// non-positive ttl disables caching.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" || ttl <= 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := pebble.Open(filepath.Join(dir, "feeds"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble db: %w", err)
	}
	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get decodes the fresh value stored under key into v. It reports false on
// a miss or when the value has expired.
func (c *Cache) Get(key string, v any) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, closer, err := c.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %q: %w", key, err)
	}
	defer closer.Close()

	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	if c.now().Sub(rec.Stored) > c.ttl {
		return false, nil
	}
	if err := json.Unmarshal(rec.Data, v); err != nil {
		return false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	return true, nil
}

// Put stores v under key.
func (c *Cache) Put(key string, v any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	rec, err := json.Marshal(cacheRecord{Stored: c.now(), Data: data})
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	return c.db.Set([]byte(key), rec, pebble.Sync)
}

// Prune deletes every expired record and returns how many were removed.
func (c *Cache) Prune() (int, error) {
	if c == nil {
		return 0, nil
	}
	it, err := c.db.NewIter(nil)
	if err != nil {
		return 0, err
	}
	var stale [][]byte
	for it.First(); it.Valid(); it.Next() {
		var rec cacheRecord
		if err := json.Unmarshal(it.Value(), &rec); err != nil || c.now().Sub(rec.Stored) > c.ttl {
			stale = append(stale, append([]byte(nil), it.Key()...))
		}
	}
	if err := it.Close(); err != nil {
		return 0, err
	}
	for _, k := range stale {
		if err := c.db.Delete(k, pebble.NoSync); err != nil {
			return 0, fmt.Errorf("cache prune: %w", err)
		}
	}
	return len(stale), nil
}

// Close closes the store.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}
