// Package service exposes the analysis operations consumed by the CLI
// and the MCP server. It validates and clamps parameters, delegates to
// the engine and analyzers, and maps failures to classified errors.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repolens/repolens/internal/engine"
	"github.com/repolens/repolens/internal/report"
	"github.com/repolens/repolens/internal/scanner"
	"github.com/repolens/repolens/internal/vcs"
	"github.com/repolens/repolens/pkg/analyzer/contributors"
	"github.com/repolens/repolens/pkg/analyzer/hotspot"
	"github.com/repolens/repolens/pkg/analyzer/metrics"
	"github.com/repolens/repolens/pkg/analyzer/smells"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

// Service orchestrates repository analysis operations.
type Service struct {
	cfg      *config.Config
	provider vcs.Provider
	engine   *engine.Engine
	log      *logrus.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProvider sets the repository facts provider (for testing).
func WithProvider(p vcs.Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates a service backed by a fresh engine and snapshot store.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}
	s := &Service{
		cfg:      cfg,
		provider: vcs.NewGitProvider(),
		log:      logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = engine.New(cfg,
		engine.WithProvider(s.provider),
		engine.WithLogger(s.log),
	)
	return s
}

// Store returns the snapshot store backing generate_report.
func (s *Service) Store() *engine.Store {
	return s.engine.Store()
}

// AnalyzeRequest carries the analyze_repository parameters.
type AnalyzeRequest struct {
	RepoPath   string
	Branch     string
	Depth      int
	Facets     []string
	OnProgress func()
}

// AnalyzeRepository runs the full analysis pipeline and stores an
// immutable snapshot. Depth is clamped to the configured maximum, an
// unknown facet name is rejected.
func (s *Service) AnalyzeRepository(ctx context.Context, req AnalyzeRequest) (*models.AnalysisSnapshot, error) {
	if req.RepoPath == "" {
		return nil, models.Errorf(models.ErrInvalidParameter, "service.analyze", "repo_path is required")
	}
	facets, err := models.NewFacetSet(req.Facets...)
	if err != nil {
		return nil, models.NewError(models.ErrInvalidParameter, "service.analyze", err)
	}

	depth := req.Depth
	if depth == 0 {
		depth = s.cfg.Analysis.Depth
	}
	depth = clampInt(depth, 1, s.cfg.Analysis.MaxDepth)

	return s.engine.Analyze(ctx, engine.Request{
		RepoPath:   req.RepoPath,
		Branch:     req.Branch,
		Depth:      depth,
		Facets:     facets,
		OnProgress: req.OnProgress,
	})
}

// FileMetrics holds the metric values computed for one file, filtered
// to the requested kinds.
type FileMetrics struct {
	Path    string          `json:"path"`
	Metrics []models.Metric `json:"metrics"`
}

// GetCodeMetrics computes metrics for a single file. An empty kind list
// selects every metric.
func (s *Service) GetCodeMetrics(ctx context.Context, filePath string, metricTypes []string) (*FileMetrics, error) {
	if filePath == "" {
		return nil, models.Errorf(models.ErrInvalidParameter, "service.metrics", "file_path is required")
	}

	kinds := models.AllMetricKinds()
	if len(metricTypes) > 0 {
		seen := make(map[models.MetricKind]bool, len(metricTypes))
		for _, name := range metricTypes {
			kind, err := models.ParseMetricKind(name)
			if err != nil {
				return nil, models.NewError(models.ErrInvalidParameter, "service.metrics", err)
			}
			seen[kind] = true
		}
		kinds = kinds[:0]
		for _, kind := range models.AllMetricKinds() {
			if seen[kind] {
				kinds = append(kinds, kind)
			}
		}
	}

	a := metrics.New()
	fm, err := a.AnalyzeFile(filePath)
	if err != nil {
		return nil, err
	}

	values := map[models.MetricKind]float64{
		models.MetricLinesOfCode:          float64(fm.LinesOfCode),
		models.MetricCyclomaticComplexity: fm.CyclomaticComplexity,
		models.MetricMaintainabilityIndex: fm.MaintainabilityIndex,
		models.MetricTechnicalDebt:        fm.TechnicalDebt,
	}

	out := &FileMetrics{Path: fm.Path}
	for _, kind := range kinds {
		out.Metrics = append(out.Metrics, models.Metric{
			Kind:  kind,
			Value: values[kind],
			Scope: fm.Path,
		})
	}
	return out, nil
}

// DetectSmells scans a repository's tracked files for code smells at
// the given sensitivity.
func (s *Service) DetectSmells(ctx context.Context, repoPath, sensitivity string) (*models.SmellsResult, error) {
	level := models.Sensitivity(s.cfg.Analysis.Sensitivity)
	if sensitivity != "" {
		parsed, err := models.ParseSensitivity(sensitivity)
		if err != nil {
			return nil, models.NewError(models.ErrInvalidParameter, "service.smells", err)
		}
		level = parsed
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	facts, err := s.facts(ctx, repoPath, vcs.FactsOptions{Branch: s.cfg.Analysis.Branch, Depth: 1, WithFiles: true})
	if err != nil {
		return nil, err
	}
	files := scanner.NewScanner(s.cfg).Filter(repoPath, facts.Files)
	files, _ = scanner.FilterBySize(files, s.cfg.Exclude.MaxFileBytes())

	return smells.New(
		smells.WithSensitivity(level),
		smells.WithWorkers(s.cfg.Analysis.Workers),
	).Analyze(ctx, files)
}

// AnalyzeContributors aggregates per-author statistics inside the
// given time range.
func (s *Service) AnalyzeContributors(ctx context.Context, repoPath, timeRange string) (*models.ContributorsResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	facts, err := s.facts(ctx, repoPath, vcs.FactsOptions{Branch: s.cfg.Analysis.Branch, Depth: s.cfg.Analysis.MaxDepth})
	if err != nil {
		return nil, err
	}

	result, err := contributors.New().Analyze(facts.Commits, timeRange, time.Now())
	if err != nil {
		return nil, models.Classify("service.contributors", err)
	}
	return result, nil
}

// GetHotspots ranks files by change frequency and code risk. The
// frequency threshold is clamped to [0, 1].
func (s *Service) GetHotspots(ctx context.Context, repoPath string, threshold float64) (*models.HotspotsResult, error) {
	if threshold == 0 {
		threshold = s.cfg.Thresholds.HotspotFrequency
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	facts, err := s.facts(ctx, repoPath, vcs.FactsOptions{Branch: s.cfg.Analysis.Branch, Depth: s.cfg.Analysis.Depth, WithFiles: true})
	if err != nil {
		return nil, err
	}
	files := scanner.NewScanner(s.cfg).Filter(repoPath, facts.Files)
	files, _ = scanner.FilterBySize(files, s.cfg.Exclude.MaxFileBytes())

	// Complexity feeds the risk score. A metrics failure degrades the
	// ranking to frequency only instead of failing the operation.
	metricsResult, err := metrics.New(metrics.WithWorkers(s.cfg.Analysis.Workers)).Analyze(ctx, files)
	if err != nil {
		s.log.WithError(err).Warn("hotspots: metrics unavailable, ranking by frequency only")
		metricsResult = nil
	}

	return hotspot.New(hotspot.WithThreshold(threshold)).Analyze(facts.Commits, metricsResult)
}

// GenerateReport renders a stored snapshot in the requested format.
func (s *Service) GenerateReport(analysisID, format string, sections []string) (*models.Report, error) {
	if analysisID == "" {
		return nil, models.Errorf(models.ErrInvalidParameter, "service.report", "analysis_id is required")
	}

	fmtParsed := models.ReportJSON
	if format != "" {
		parsed, err := models.ParseReportFormat(format)
		if err != nil {
			return nil, models.NewError(models.ErrInvalidParameter, "service.report", err)
		}
		fmtParsed = parsed
	}

	snap, ok := s.engine.Store().Get(analysisID)
	if !ok {
		return nil, models.Errorf(models.ErrSnapshotNotFound, "service.report", "no analysis with id %s", analysisID)
	}

	return report.Generate(snap, fmtParsed, sections)
}

func (s *Service) facts(ctx context.Context, repoPath string, opts vcs.FactsOptions) (*vcs.Facts, error) {
	if repoPath == "" {
		return nil, models.Errorf(models.ErrInvalidParameter, "service.facts", "repo_path is required")
	}
	return s.provider.Facts(ctx, repoPath, opts)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok && s.cfg.Analysis.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(s.cfg.Analysis.TimeoutSeconds)*time.Second)
	}
	return ctx, func() {}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
