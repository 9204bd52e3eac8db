// Package cache persists analysis snapshots on disk, keyed by the tree
// fingerprint and the parameters that shaped the result.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

// Cache is a TTL-bounded snapshot cache. A disabled cache is valid and
// misses on every lookup.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry wraps a stored snapshot with its write time for TTL checks.
type entry struct {
	Timestamp time.Time               `json:"timestamp"`
	Snapshot  models.AnalysisSnapshot `json:"snapshot"`
}

// New creates a cache from config. An empty dir resolves to repolens
// under the user cache directory; failing that the cache is disabled.
func New(cfg config.CacheConfig) (*Cache, error) {
	if !cfg.Enabled {
		return &Cache{}, nil
	}

	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return &Cache{}, nil
		}
		dir = filepath.Join(base, "repolens")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Cache{dir: dir, ttl: ttl, enabled: true}, nil
}

// Key derives the cache key for one analysis request. Any parameter
// that changes the result must be part of it.
func Key(fingerprint string, parts ...string) string {
	h := blake3.New()
	h.Write([]byte(fingerprint))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached snapshot for key if present and fresh. The
// returned snapshot carries no ID; the caller assigns one.
func (c *Cache) Get(key string) (*models.AnalysisSnapshot, bool) {
	if !c.enabled {
		return nil, false
	}

	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}

	if time.Since(e.Timestamp) > c.ttl {
		os.Remove(c.keyPath(key))
		return nil, false
	}

	snap := e.Snapshot
	snap.ID = ""
	return &snap, true
}

// Put stores a snapshot under key. The ID is stripped so a cached
// result can never resurrect an old analysis id.
func (c *Cache) Put(key string, snap *models.AnalysisSnapshot) error {
	if !c.enabled {
		return nil
	}

	stored := *snap
	stored.ID = ""

	data, err := json.Marshal(entry{Timestamp: time.Now(), Snapshot: stored})
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0o600)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

// Enabled reports whether lookups can hit.
func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
