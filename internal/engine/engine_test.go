package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/vcs"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

// fakeProvider serves canned facts without touching disk.
type fakeProvider struct {
	facts *vcs.Facts
	err   error
}

func (f *fakeProvider) Facts(ctx context.Context, repoPath string, opts vcs.FactsOptions) (*vcs.Facts, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.facts, nil
}

func sampleFacts() *vcs.Facts {
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	return &vcs.Facts{
		Info: models.RepositoryInfo{
			Path:         "/repo",
			Branch:       "main",
			TotalCommits: 3,
			LastCommit:   base.Add(2 * time.Hour),
		},
		Commits: []models.CommitFact{
			{
				Hash: "c3", AuthorName: "Alice", AuthorEmail: "alice@x.com",
				Timestamp: base.Add(2 * time.Hour),
				Files:     map[string]models.FileChange{"main.go": {LinesAdded: 4}},
			},
			{
				Hash: "c2", AuthorName: "Bob", AuthorEmail: "bob@x.com",
				Timestamp: base.Add(time.Hour),
				Files:     map[string]models.FileChange{"main.go": {LinesAdded: 2}, "util.go": {LinesAdded: 9}},
			},
			{
				Hash: "c1", AuthorName: "Alice", AuthorEmail: "alice@x.com",
				Timestamp: base,
				Files:     map[string]models.FileChange{"main.go": {LinesAdded: 10}},
			},
		},
		Files: []models.FileFact{
			{Path: "main.go", Text: "package main\n\nfunc main() {\n\tif true {\n\t\tprintln(\"hi\")\n\t}\n}\n", Size: 60},
			{Path: "util.go", Text: "package main\n\nfunc helper() {}\n", Size: 30},
		},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Analysis.TimeoutSeconds = 30
	cfg.Cache.Enabled = false
	all := append([]Option{WithProvider(&fakeProvider{facts: sampleFacts()})}, opts...)
	return New(cfg, all...)
}

func TestAnalyzeAllFacets(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", Branch: "main", Depth: 100})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if snap.ID == "" {
		t.Error("snapshot should have an ID")
	}
	if snap.Metrics == nil || snap.Smells == nil || snap.Contributors == nil || snap.Hotspots == nil {
		t.Fatalf("all facets should be populated: %+v", snap)
	}
	if snap.Partial {
		t.Errorf("clean run should not be partial, warnings: %v", snap.Warnings)
	}
	if snap.TreeFingerprint == "" {
		t.Error("snapshot should carry a tree fingerprint")
	}
	if snap.Repository.Branch != "main" {
		t.Errorf("Repository.Branch = %q, want main", snap.Repository.Branch)
	}

	// Stored and retrievable.
	stored, ok := e.Store().Get(snap.ID)
	if !ok {
		t.Fatal("snapshot not found in store")
	}
	if stored != snap {
		t.Error("store should return the same snapshot")
	}
}

func TestAnalyzeFacetSubset(t *testing.T) {
	e := newTestEngine(t)

	facets, _ := models.NewFacetSet("metrics", "hotspots")
	snap, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", Facets: facets})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if snap.Metrics == nil || snap.Hotspots == nil {
		t.Error("requested facets missing")
	}
	if snap.Smells != nil || snap.Contributors != nil {
		t.Error("unrequested facets should stay nil")
	}
}

func TestAnalyzeHotspotsWithoutMetrics(t *testing.T) {
	e := newTestEngine(t)

	facets, _ := models.NewFacetSet("hotspots")
	snap, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", Facets: facets, Threshold: 0.1})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if snap.Hotspots == nil || len(snap.Hotspots.Entries) == 0 {
		t.Fatal("hotspots should rank without the metrics facet")
	}
}

func TestAnalyzeFacetFailureIsIsolated(t *testing.T) {
	e := newTestEngine(t)

	// An unparseable time range fails only the contributors facet.
	snap, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", TimeRange: "not-a-range"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if snap.Contributors != nil {
		t.Error("failed facet should stay nil")
	}
	if snap.Metrics == nil || snap.Smells == nil || snap.Hotspots == nil {
		t.Error("healthy facets should still complete")
	}
	if !snap.Partial {
		t.Error("snapshot should be marked partial")
	}
	if len(snap.Warnings) == 0 {
		t.Error("snapshot should carry a warning for the failed facet")
	}
}

func TestAnalyzeFatalOnFactsError(t *testing.T) {
	cfg := config.DefaultConfig()
	e := New(cfg, WithProvider(&fakeProvider{
		err: models.Errorf(models.ErrNotARepository, "vcs.facts", "no .git"),
	}))

	_, err := e.Analyze(context.Background(), Request{RepoPath: "/repo"})
	if err == nil {
		t.Fatal("Analyze() should fail when facts cannot be read")
	}
	if kind := models.KindOf(err); kind != models.ErrNotARepository {
		t.Errorf("error kind = %v, want %v", kind, models.ErrNotARepository)
	}
	if e.Store().Len() != 0 {
		t.Error("failed analysis should not store a snapshot")
	}
}

func TestRepeatedAnalysisGetsFreshIDs(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.Analyze(context.Background(), Request{RepoPath: "/repo"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	second, err := e.Analyze(context.Background(), Request{RepoPath: "/repo"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if first.ID == second.ID {
		t.Error("each analysis run should get its own ID")
	}
	if first.TreeFingerprint != second.TreeFingerprint {
		t.Error("same tree should produce the same fingerprint")
	}

	// Both snapshots remain addressable.
	if _, ok := e.Store().Get(first.ID); !ok {
		t.Error("first snapshot evicted prematurely")
	}
	if _, ok := e.Store().Get(second.ID); !ok {
		t.Error("second snapshot missing")
	}
}

func TestAnalyzeDeterministicResults(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.Analyze(context.Background(), Request{RepoPath: "/repo"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	second, err := e.Analyze(context.Background(), Request{RepoPath: "/repo"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if len(first.Metrics.Files) != len(second.Metrics.Files) {
		t.Fatal("metrics file counts differ between identical runs")
	}
	for i := range first.Metrics.Files {
		if first.Metrics.Files[i] != second.Metrics.Files[i] {
			t.Errorf("metrics differ at %d: %+v vs %+v", i, first.Metrics.Files[i], second.Metrics.Files[i])
		}
	}
	if len(first.Hotspots.Entries) != len(second.Hotspots.Entries) {
		t.Fatal("hotspot entry counts differ between identical runs")
	}
	for i := range first.Hotspots.Entries {
		if first.Hotspots.Entries[i] != second.Hotspots.Entries[i] {
			t.Errorf("hotspots differ at %d", i)
		}
	}
}

func TestStoreEvictionOldestFirst(t *testing.T) {
	store := NewStore(2)

	for i := 0; i < 3; i++ {
		err := store.Put(&models.AnalysisSnapshot{ID: fmt.Sprintf("id-%d", i)})
		if err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	if store.Len() != 2 {
		t.Fatalf("store length = %d, want 2", store.Len())
	}
	if _, ok := store.Get("id-0"); ok {
		t.Error("oldest snapshot should be evicted")
	}
	if _, ok := store.Get("id-1"); !ok {
		t.Error("id-1 should survive")
	}
	if _, ok := store.Get("id-2"); !ok {
		t.Error("id-2 should survive")
	}
}

func TestStoreRefusesDuplicateIDs(t *testing.T) {
	store := NewStore(4)

	if err := store.Put(&models.AnalysisSnapshot{ID: "dup", RepoPath: "/a"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := store.Put(&models.AnalysisSnapshot{ID: "dup", RepoPath: "/b"}); err == nil {
		t.Error("Put() should refuse a duplicate ID")
	}
}

func TestStoreListOrder(t *testing.T) {
	store := NewStore(4)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Put(&models.AnalysisSnapshot{ID: id}); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("List() length = %d, want 3", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].ID != want {
			t.Errorf("List()[%d] = %s, want %s", i, list[i].ID, want)
		}
	}
}

func TestAnalyzeCacheHitGetsFreshID(t *testing.T) {
	c, err := cache.New(config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTLHours: 1})
	if err != nil {
		t.Fatalf("cache.New() error: %v", err)
	}
	e := newTestEngine(t, WithCache(c))

	req := Request{RepoPath: "/repo", Branch: "main", Depth: 100}
	first, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	second, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if second.ID == first.ID {
		t.Error("cached analysis must carry a fresh ID")
	}
	if second.TreeFingerprint != first.TreeFingerprint {
		t.Error("cached analysis should keep the tree fingerprint")
	}
	if second.Metrics == nil || second.Metrics.Totals.LinesOfCode != first.Metrics.Totals.LinesOfCode {
		t.Error("cached analysis should carry the original metrics")
	}
	if _, ok := e.Store().Get(second.ID); !ok {
		t.Error("cached analysis should be stored under its new ID")
	}
}

func TestAnalyzeCacheKeyedByParameters(t *testing.T) {
	c, err := cache.New(config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTLHours: 1})
	if err != nil {
		t.Fatalf("cache.New() error: %v", err)
	}
	e := newTestEngine(t, WithCache(c))

	full, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", Depth: 100})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	facets, err := models.NewFacetSet("metrics")
	if err != nil {
		t.Fatalf("NewFacetSet() error: %v", err)
	}
	narrow, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", Depth: 100, Facets: facets})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if full.Hotspots == nil {
		t.Error("full analysis should include hotspots")
	}
	if narrow.Hotspots != nil {
		t.Error("facet subset must not be served from the full-analysis cache entry")
	}
}

func TestAnalyzeSkipsOversizeFiles(t *testing.T) {
	facts := sampleFacts()
	facts.Files = append(facts.Files, models.FileFact{
		Path: "big.go",
		Text: "package main\n",
		Size: 4 * 1024 * 1024,
	})

	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Exclude.MaxFileKB = 1024
	e := New(cfg, WithProvider(&fakeProvider{facts: facts}))

	metricsOnly, _ := models.NewFacetSet("metrics")
	snap, err := e.Analyze(context.Background(), Request{RepoPath: "/repo", Facets: metricsOnly})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	for _, m := range snap.Metrics.Files {
		if m.Path == "big.go" {
			t.Error("oversize file should not be analyzed")
		}
	}
	if len(snap.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one size-limit warning", snap.Warnings)
	}
	if snap.Partial {
		t.Error("size-limited run should not be marked partial")
	}
}
