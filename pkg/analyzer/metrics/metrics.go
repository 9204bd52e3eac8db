// Package metrics computes per-file and repository-level code metrics:
// lines of code, a cyclomatic estimate, a maintainability index, and a
// technical debt figure derived from the first two.
package metrics

import (
	"context"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/repolens/repolens/internal/fileproc"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
)

// Analyzer computes code metrics over repository files.
type Analyzer struct {
	workers    int
	onProgress fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithProgress sets a callback invoked after each file.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new metrics analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes metrics for every file with loadable text. Files
// without text (binary or oversized) are reported as skipped. A cancelled
// context surfaces as an error; individual file failures do not.
func (a *Analyzer) Analyze(ctx context.Context, files []models.FileFact) (*models.MetricsResult, error) {
	result := &models.MetricsResult{}

	analyzable := make([]models.FileFact, 0, len(files))
	for _, f := range files {
		if f.Text == "" {
			result.Skipped = append(result.Skipped, f.Path)
			continue
		}
		analyzable = append(analyzable, f)
	}
	sort.Strings(result.Skipped)

	computed, errs := fileproc.MapFacts(ctx, analyzable, a.workers,
		func(psr *parser.Parser, f models.FileFact) (models.FileMetrics, error) {
			return ComputeFile(psr, f), nil
		}, a.onProgress)

	if errs != nil {
		for _, pe := range errs.Errors {
			if ctx.Err() != nil {
				return nil, models.Classify("metrics.analyze", ctx.Err())
			}
			result.Warnings = append(result.Warnings, pe.Error())
		}
	}

	sort.Slice(computed, func(i, j int) bool { return computed[i].Path < computed[j].Path })
	result.Files = computed
	result.Totals = aggregate(computed)

	return result, nil
}

// AnalyzeFile computes metrics for a single on-disk file.
func (a *Analyzer) AnalyzeFile(path string) (*models.FileMetrics, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, models.Classify("metrics.file", err)
	}

	psr := parser.New()
	defer psr.Close()

	fm := ComputeFile(psr, models.FileFact{
		Path: path,
		Text: string(text),
		Size: int64(len(text)),
	})
	return &fm, nil
}

// ComputeFile derives the metric values for one file. The cyclomatic
// figure is the mean over the file's function-like units, zero when a
// parsed file declares none. Files in languages without a grammar fall
// back to a keyword scan over the whole text, treated as a single unit,
// and report zero functions.
func ComputeFile(psr *parser.Parser, f models.FileFact) models.FileMetrics {
	loc := parser.CountCodeLines(f.Text, f.Path)

	var cc float64
	functions := 0

	lang := parser.DetectLanguage(f.Path)
	parsed := false
	if lang != parser.LangUnknown {
		if result, err := psr.Parse([]byte(f.Text), lang, f.Path); err == nil {
			units := parser.GetFunctions(result)
			functions = len(units)
			cc = unitComplexity(units, result.Source, lang)
			parsed = true
		}
	}
	if !parsed {
		cc = float64(1 + EstimateDecisions(f.Text))
	}

	return models.FileMetrics{
		Path:                 f.Path,
		LinesOfCode:          loc,
		CyclomaticComplexity: cc,
		MaintainabilityIndex: maintainabilityIndex(loc, cc),
		TechnicalDebt:        technicalDebt(loc, cc),
		Functions:            functions,
	}
}

// unitComplexity averages 1 + decision points across function-like
// units. No units means no measurable branching paths.
func unitComplexity(units []parser.FunctionNode, source []byte, lang parser.Language) float64 {
	if len(units) == 0 {
		return 0
	}
	total := 0
	for _, fn := range units {
		total++
		if fn.Body != nil {
			total += CountDecisionPoints(fn.Body, source, lang)
		}
	}
	return round2(float64(total) / float64(len(units)))
}

// maintainabilityIndex maps size and branching onto a 0-100 scale.
// Both penalties saturate: 30 points for size at 10k lines equivalent,
// 40 points for branching at complexity 10.
func maintainabilityIndex(loc int, cc float64) float64 {
	sizePenalty := math.Min(float64(loc)/100, 1) * 30
	branchPenalty := math.Min(cc/10, 1) * 40
	return round2(math.Max(0, 100-sizePenalty-branchPenalty))
}

// technicalDebt estimates remediation effort in hours.
func technicalDebt(loc int, cc float64) float64 {
	return round2(0.5*cc + 0.01*float64(loc))
}

// aggregate folds per-file values into repository totals. The repository
// maintainability index is the size-weighted mean so large files dominate,
// while the cyclomatic figure stays a plain mean.
func aggregate(files []models.FileMetrics) models.RepoMetrics {
	totals := models.RepoMetrics{Files: len(files)}
	if len(files) == 0 {
		totals.MaintainabilityIndex = 100
		return totals
	}

	ccs := make([]float64, len(files))
	mis := make([]float64, len(files))
	weights := make([]float64, len(files))

	for i, f := range files {
		totals.LinesOfCode += f.LinesOfCode
		totals.TechnicalDebt += f.TechnicalDebt
		ccs[i] = f.CyclomaticComplexity
		mis[i] = f.MaintainabilityIndex
		weights[i] = float64(f.LinesOfCode)
	}

	totals.CyclomaticComplexity = round2(stat.Mean(ccs, nil))
	if totals.LinesOfCode > 0 {
		totals.MaintainabilityIndex = round2(stat.Mean(mis, weights))
	} else {
		totals.MaintainabilityIndex = round2(stat.Mean(mis, nil))
	}
	totals.TechnicalDebt = round2(totals.TechnicalDebt)

	return totals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
