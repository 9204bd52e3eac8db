// Package engine orchestrates a full repository analysis: it pulls facts
// from version control, fans the requested facets out to the analyzers,
// and assembles the results into an immutable stored snapshot.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/zeebo/blake3"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/scanner"
	"github.com/repolens/repolens/internal/vcs"
	"github.com/repolens/repolens/pkg/analyzer/contributors"
	"github.com/repolens/repolens/pkg/analyzer/hotspot"
	"github.com/repolens/repolens/pkg/analyzer/metrics"
	"github.com/repolens/repolens/pkg/analyzer/smells"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

// Request describes one analysis run.
type Request struct {
	RepoPath    string
	Branch      string
	Depth       int
	Facets      models.FacetSet
	Sensitivity models.Sensitivity
	TimeRange   string
	Threshold   float64
	OnProgress  func()
}

// Engine runs analyses and owns the snapshot store.
type Engine struct {
	provider vcs.Provider
	cfg      *config.Config
	store    *Store
	cache    *cache.Cache
	log      *logrus.Logger
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithProvider overrides the version control facts provider.
func WithProvider(p vcs.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithStore sets the snapshot store.
func WithStore(s *Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithCache sets the snapshot cache.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// New creates an engine from configuration.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{
		provider: vcs.NewGitProvider(),
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = NewStore(cfg.Store.Capacity)
	}
	if e.log == nil {
		e.log = logrus.New()
	}
	if e.cache == nil {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			c = &cache.Cache{}
		}
		e.cache = c
	}
	return e
}

// Store exposes the snapshot store for lookups by ID.
func (e *Engine) Store() *Store {
	return e.store
}

// Analyze runs the requested facets and stores the resulting snapshot.
// Facet failures degrade the snapshot to partial with warnings instead of
// failing the run; only fact extraction errors and timeouts are fatal.
func (e *Engine) Analyze(ctx context.Context, req Request) (*models.AnalysisSnapshot, error) {
	if _, ok := ctx.Deadline(); !ok && e.cfg.Analysis.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.Analysis.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	if len(req.Facets) == 0 {
		req.Facets, _ = models.NewFacetSet()
	}
	if req.Sensitivity == "" {
		req.Sensitivity = models.Sensitivity(e.cfg.Analysis.Sensitivity)
	}
	if req.TimeRange == "" {
		req.TimeRange = "all"
	}
	if req.Threshold == 0 {
		req.Threshold = e.cfg.Thresholds.HotspotFrequency
	}

	start := time.Now()
	log := e.log.WithFields(logrus.Fields{
		"repo":   req.RepoPath,
		"branch": req.Branch,
		"depth":  req.Depth,
	})
	log.Debug("starting analysis")

	facts, err := e.provider.Facts(ctx, req.RepoPath, vcs.FactsOptions{
		Branch:    req.Branch,
		Depth:     req.Depth,
		WithFiles: true,
	})
	if err != nil {
		return nil, err
	}

	files := scanner.NewScanner(e.cfg).Filter(req.RepoPath, facts.Files)
	files, skipped := scanner.FilterBySize(files, e.cfg.Exclude.MaxFileBytes())

	fp := fingerprint(files)
	key := cacheKey(fp, req)
	if cached, ok := e.cache.Get(key); ok {
		cached.RepoPath = req.RepoPath
		cached.CreatedAt = time.Now().UTC()
		if err := e.storeSnapshot(cached); err != nil {
			return nil, err
		}
		log.WithField("id", cached.ID).Debug("analysis served from cache")
		return cached, nil
	}

	snap := &models.AnalysisSnapshot{
		RepoPath:        req.RepoPath,
		Branch:          facts.Info.Branch,
		Depth:           req.Depth,
		CreatedAt:       time.Now().UTC(),
		TreeFingerprint: fp,
		Repository:      facts.Info,
	}
	e.runFacets(ctx, req, facts, files, snap)

	// Oversize files are excluded, not failed, so they do not make the
	// snapshot partial.
	if skipped > 0 {
		snap.Warnings = append(snap.Warnings,
			fmt.Sprintf("%d file(s) skipped over the %d KB size limit", skipped, e.cfg.Exclude.MaxFileKB))
	}

	if err := ctx.Err(); err != nil {
		return nil, models.Classify("engine.analyze", err)
	}

	if err := e.storeSnapshot(snap); err != nil {
		return nil, err
	}

	if !snap.Partial {
		if err := e.cache.Put(key, snap); err != nil {
			log.WithError(err).Debug("could not write snapshot cache")
		}
	}

	log.WithFields(logrus.Fields{
		"id":       snap.ID,
		"files":    len(files),
		"commits":  len(facts.Commits),
		"partial":  snap.Partial,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("analysis complete")

	return snap, nil
}

// runFacets fans the requested facets out to the analyzers and collects
// their results. Metrics feed the hotspot ranking, so hotspots wait on
// the metrics facet; the other facets run fully in parallel. Each facet
// failure becomes a warning, never an abort.
func (e *Engine) runFacets(ctx context.Context, req Request, facts *vcs.Facts, files []models.FileFact, snap *models.AnalysisSnapshot) {
	workers := e.cfg.Analysis.Workers

	metricsCh := make(chan *models.MetricsResult, 1)

	warn := make(chan string, 8)
	p := pool.New().WithMaxGoroutines(len(models.AllFacets()))

	if req.Facets.Has(models.FacetMetrics) {
		p.Go(func() {
			a := metrics.New(metrics.WithWorkers(workers), metrics.WithProgress(req.OnProgress))
			result, err := a.Analyze(ctx, files)
			if err != nil {
				warn <- fmt.Sprintf("metrics facet failed: %v", err)
				metricsCh <- nil
				return
			}
			snap.Metrics = result
			metricsCh <- result
		})
	} else {
		metricsCh <- nil
	}

	if req.Facets.Has(models.FacetSmells) {
		p.Go(func() {
			a := smells.New(
				smells.WithSensitivity(req.Sensitivity),
				smells.WithWorkers(workers),
				smells.WithProgress(req.OnProgress),
			)
			result, err := a.Analyze(ctx, files)
			if err != nil {
				warn <- fmt.Sprintf("smells facet failed: %v", err)
				return
			}
			snap.Smells = result
		})
	}

	if req.Facets.Has(models.FacetContributors) {
		p.Go(func() {
			result, err := contributors.New().Analyze(facts.Commits, req.TimeRange, time.Now().UTC())
			if err != nil {
				warn <- fmt.Sprintf("contributors facet failed: %v", err)
				return
			}
			snap.Contributors = result
		})
	}

	if req.Facets.Has(models.FacetHotspots) {
		p.Go(func() {
			metricsResult := <-metricsCh
			result, err := hotspot.New(hotspot.WithThreshold(req.Threshold)).Analyze(facts.Commits, metricsResult)
			if err != nil {
				warn <- fmt.Sprintf("hotspots facet failed: %v", err)
				return
			}
			snap.Hotspots = result
		})
	}

	p.Wait()
	close(warn)

	for w := range warn {
		snap.Warnings = append(snap.Warnings, w)
	}
	if snap.Metrics != nil {
		snap.Warnings = append(snap.Warnings, snap.Metrics.Warnings...)
	}
	if snap.Smells != nil {
		snap.Warnings = append(snap.Warnings, snap.Smells.Warnings...)
	}
	sort.Strings(snap.Warnings)
	snap.Partial = len(snap.Warnings) > 0
}

// storeSnapshot assigns a fresh unique ID and stores the snapshot.
func (e *Engine) storeSnapshot(snap *models.AnalysisSnapshot) error {
	for attempt := 0; attempt < 5; attempt++ {
		snap.ID = uuid.NewString()
		if e.store.Contains(snap.ID) {
			continue
		}
		if err := e.store.Put(snap); err == nil {
			return nil
		}
	}
	return models.Errorf(models.ErrInternal, "engine.store", "could not allocate a unique snapshot id")
}

// cacheKey folds every request parameter that shapes the result into the
// cache key alongside the tree fingerprint.
func cacheKey(fp string, req Request) string {
	var facets []string
	for _, f := range models.AllFacets() {
		if req.Facets.Has(f) {
			facets = append(facets, string(f))
		}
	}
	parts := []string{
		req.Branch,
		fmt.Sprintf("%d", req.Depth),
		fmt.Sprintf("%g", req.Threshold),
		string(req.Sensitivity),
		req.TimeRange,
	}
	return cache.Key(fp, append(parts, facets...)...)
}

// fingerprint hashes every analyzed file's path and content into a stable
// identity for the analyzed tree.
func fingerprint(files []models.FileFact) string {
	sorted := make([]models.FileFact, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	h := blake3.New()
	for _, f := range sorted {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write([]byte(f.Text))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
