package engine

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Cache is a file-backed response cache: one JSON file per entry under
// dir, keyed by a deterministic hash of (endpoint, params). Entries
// older than ttl are treated as absent and deleted opportunistically.
// Corrupt entries degrade to absent — caching is an optimization, never
// a correctness requirement.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// cacheEnvelope is the on-disk entry format.
type cacheEnvelope struct {
	CachedAt int64           `json:"cached_at"`
	Payload  json.RawMessage `json:"payload"`
}

// NewCache creates the cache directory if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// CacheKey derives a deterministic key from a logical endpoint name and
// its parameters. Map marshaling sorts keys, so parameter insertion
// order never changes the key.
func CacheKey(endpoint string, params map[string]string) string {
	canonical, _ := json.Marshal(params)
	hash := sha256.Sum256([]byte(endpoint + ":" + string(canonical)))
	return fmt.Sprintf("%x", hash[:16])
}

// Get returns the cached payload for (endpoint, params), or ok=false if
// absent, expired, or unreadable.
func (c *Cache) Get(endpoint string, params map[string]string) ([]byte, bool) {
	path := c.entryPath(CacheKey(endpoint, params))

	data, err := os.ReadFile(path)
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Debug("cache: corrupt entry, removing", slog.String("path", path))
		os.Remove(path)
		c.misses.Add(1)
		return nil, false
	}

	age := c.now().Unix() - env.CachedAt
	if age >= int64(c.ttl.Seconds()) {
		os.Remove(path)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return env.Payload, true
}

// Put stores payload for (endpoint, params). Failures are logged and
// swallowed; a missed write only costs a future remote call.
func (c *Cache) Put(endpoint string, params map[string]string, payload []byte) {
	env := cacheEnvelope{CachedAt: c.now().Unix(), Payload: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	path := c.entryPath(CacheKey(endpoint, params))
	if err := os.WriteFile(path, data, 0640); err != nil {
		slog.Warn("cache: write failed", slog.String("path", path), slog.Any("error", err))
	}
}

// Stats returns cumulative hit/miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// HitRate returns the hit percentage, or 0 with no lookups yet.
func (c *Cache) HitRate() float64 {
	hits, misses := c.Stats()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Len counts entries currently on disk.
func (c *Cache) Len() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("cache: read dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("cache: remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
