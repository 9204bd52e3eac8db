package cache

import (
	"testing"
	"time"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTLHours: 24})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestDisabledCacheMisses(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}

	key := Key("fp", "main")
	if err := c.Put(key, &models.AnalysisSnapshot{RepoPath: "/repo"}); err != nil {
		t.Fatalf("Put() on disabled cache error: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("disabled cache should never hit")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := testCache(t)

	snap := &models.AnalysisSnapshot{
		ID:       "original-id",
		RepoPath: "/repo",
		Branch:   "main",
		Metrics: &models.MetricsResult{
			Totals: models.RepoMetrics{Files: 3, LinesOfCode: 99},
		},
	}

	key := Key("fp-abc", "main", "100")
	if err := c.Put(key, snap); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.ID != "" {
		t.Errorf("cached snapshot must not carry an ID, got %q", got.ID)
	}
	if got.RepoPath != "/repo" || got.Metrics == nil || got.Metrics.Totals.LinesOfCode != 99 {
		t.Errorf("round trip lost data: %+v", got)
	}

	// Put must not mutate the caller's snapshot.
	if snap.ID != "original-id" {
		t.Errorf("Put() mutated the input snapshot: %q", snap.ID)
	}
}

func TestKeySensitivity(t *testing.T) {
	base := Key("fp", "main", "100")
	if base == Key("fp", "main", "200") {
		t.Error("depth change should change the key")
	}
	if base == Key("fp2", "main", "100") {
		t.Error("fingerprint change should change the key")
	}
	if base != Key("fp", "main", "100") {
		t.Error("same inputs should produce the same key")
	}
	// Concatenation across part boundaries must not collide.
	if Key("fp", "ma", "in") == Key("fp", "main", "") {
		t.Error("part boundaries should be delimited")
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := testCache(t)
	c.ttl = -time.Second

	key := Key("fp")
	if err := c.Put(key, &models.AnalysisSnapshot{RepoPath: "/repo"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expired entry should miss")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := testCache(t)

	k1, k2 := Key("a"), Key("b")
	c.Put(k1, &models.AnalysisSnapshot{})
	c.Put(k2, &models.AnalysisSnapshot{})

	if err := c.Invalidate(k1); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, ok := c.Get(k1); ok {
		t.Error("invalidated entry should miss")
	}
	if _, ok := c.Get(k2); !ok {
		t.Error("other entries should survive Invalidate")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok := c.Get(k2); ok {
		t.Error("Clear() should empty the cache")
	}

	// Invalidating a missing key is not an error.
	if err := c.Invalidate(Key("never")); err != nil {
		t.Errorf("Invalidate() on missing key: %v", err)
	}
}
