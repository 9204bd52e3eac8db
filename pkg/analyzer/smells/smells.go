// Package smells detects heuristic antipatterns in source files: long
// methods, long parameter lists, duplicated blocks, deeply nested
// conditionals, and oversized classes.
package smells

import (
	"context"
	"fmt"
	"sort"

	"github.com/repolens/repolens/internal/fileproc"
	"github.com/repolens/repolens/pkg/analyzer/metrics"
	"github.com/repolens/repolens/pkg/models"
	"github.com/repolens/repolens/pkg/parser"
)

// Thresholds define when each detector fires. A zero value disables the
// detector entirely.
type Thresholds struct {
	LongMethodLines   int
	LongParameterList int
	DuplicateMinLines int
	NestingDepth      int
	LargeClassMembers int
}

// ThresholdsFor maps a sensitivity level to detector thresholds. Low
// sensitivity runs only the cheap structural detectors with generous
// limits; high runs everything aggressively.
func ThresholdsFor(s models.Sensitivity) Thresholds {
	switch s {
	case models.SensitivityLow:
		return Thresholds{
			LongMethodLines:   75,
			LongParameterList: 8,
		}
	case models.SensitivityHigh:
		return Thresholds{
			LongMethodLines:   30,
			LongParameterList: 4,
			DuplicateMinLines: 4,
			NestingDepth:      3,
			LargeClassMembers: 12,
		}
	default:
		return Thresholds{
			LongMethodLines:   50,
			LongParameterList: 5,
			DuplicateMinLines: 6,
			NestingDepth:      4,
			LargeClassMembers: 20,
		}
	}
}

// Analyzer detects code smells in repository files.
type Analyzer struct {
	sensitivity models.Sensitivity
	thresholds  Thresholds
	workers     int
	onProgress  fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithSensitivity selects the detector set and thresholds for a level.
func WithSensitivity(s models.Sensitivity) Option {
	return func(a *Analyzer) {
		a.sensitivity = s
		a.thresholds = ThresholdsFor(s)
	}
}

// WithThresholds overrides individual thresholds after the sensitivity
// defaults are applied.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

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

// New creates a new smell analyzer at medium sensitivity.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		sensitivity: models.SensitivityMedium,
		thresholds:  ThresholdsFor(models.SensitivityMedium),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs all enabled detectors over the given files.
func (a *Analyzer) Analyze(ctx context.Context, files []models.FileFact) (*models.SmellsResult, error) {
	result := &models.SmellsResult{
		Sensitivity: a.sensitivity,
	}

	analyzable := make([]models.FileFact, 0, len(files))
	for _, f := range files {
		if f.Text == "" {
			continue
		}
		analyzable = append(analyzable, f)
	}
	result.FilesAnalyzed = len(analyzable)

	perFile, errs := fileproc.MapFacts(ctx, analyzable, a.workers,
		func(psr *parser.Parser, f models.FileFact) ([]models.SmellFinding, error) {
			return a.detectStructural(psr, f), nil
		}, a.onProgress)

	if errs != nil {
		for _, pe := range errs.Errors {
			if ctx.Err() != nil {
				return nil, models.Classify("smells.analyze", ctx.Err())
			}
			result.Warnings = append(result.Warnings, pe.Error())
		}
	}

	for _, findings := range perFile {
		result.Findings = append(result.Findings, findings...)
	}

	if a.thresholds.DuplicateMinLines > 0 {
		result.Findings = append(result.Findings, a.detectDuplicates(ctx, analyzable)...)
	}

	sort.Slice(result.Findings, func(i, j int) bool {
		fi, fj := result.Findings[i], result.Findings[j]
		if fi.Path != fj.Path {
			return fi.Path < fj.Path
		}
		if fi.StartLine != fj.StartLine {
			return fi.StartLine < fj.StartLine
		}
		return fi.Kind < fj.Kind
	})
	result.Group()

	return result, nil
}

// detectStructural runs the AST-backed detectors on one file.
func (a *Analyzer) detectStructural(psr *parser.Parser, f models.FileFact) []models.SmellFinding {
	lang := parser.DetectLanguage(f.Path)
	if lang == parser.LangUnknown {
		return nil
	}

	parsed, err := psr.Parse([]byte(f.Text), lang, f.Path)
	if err != nil {
		return nil
	}

	var findings []models.SmellFinding

	for _, fn := range parser.GetFunctions(parsed) {
		name := fn.Name
		if name == "" {
			name = "(anonymous)"
		}

		if t := a.thresholds.LongMethodLines; t > 0 && fn.Lines() > t {
			findings = append(findings, models.SmellFinding{
				Kind:      models.SmellLongMethod,
				Severity:  severityFor(float64(fn.Lines()), float64(t)),
				Path:      f.Path,
				Unit:      name,
				StartLine: int(fn.StartLine),
				EndLine:   int(fn.EndLine),
				Description: fmt.Sprintf("function %s spans %d lines (limit %d)",
					name, fn.Lines(), t),
				Suggestion: "Consider breaking this function into smaller functions",
			})
		}

		if t := a.thresholds.LongParameterList; t > 0 && fn.ParamCount > t {
			findings = append(findings, models.SmellFinding{
				Kind:      models.SmellLongParameterList,
				Severity:  severityFor(float64(fn.ParamCount), float64(t)),
				Path:      f.Path,
				Unit:      name,
				StartLine: int(fn.StartLine),
				EndLine:   int(fn.EndLine),
				Description: fmt.Sprintf("function %s takes %d parameters (limit %d)",
					name, fn.ParamCount, t),
				Suggestion: "Consider grouping parameters into a struct or options type",
			})
		}

		if t := a.thresholds.NestingDepth; t > 0 && fn.Body != nil {
			if depth := metrics.MaxNesting(fn.Body, 0); depth > t {
				findings = append(findings, models.SmellFinding{
					Kind:      models.SmellComplexCondition,
					Severity:  severityFor(float64(depth), float64(t)),
					Path:      f.Path,
					Unit:      name,
					StartLine: int(fn.StartLine),
					EndLine:   int(fn.EndLine),
					Description: fmt.Sprintf("function %s nests control flow %d levels deep (limit %d)",
						name, depth, t),
					Suggestion: "Consider flattening nested conditionals with early returns",
				})
			}
		}
	}

	if t := a.thresholds.LargeClassMembers; t > 0 {
		for _, cls := range parser.GetClasses(parsed) {
			if cls.Members > t {
				name := cls.Name
				if name == "" {
					name = "(anonymous)"
				}
				findings = append(findings, models.SmellFinding{
					Kind:      models.SmellLargeClass,
					Severity:  severityFor(float64(cls.Members), float64(t)),
					Path:      f.Path,
					Unit:      name,
					StartLine: int(cls.StartLine),
					EndLine:   int(cls.EndLine),
					Description: fmt.Sprintf("class %s defines %d methods (limit %d)",
						name, cls.Members, t),
					Suggestion: "Consider splitting this class into smaller focused types",
				})
			}
		}
	}

	return findings
}

// severityFor ranks how far a measure overshoots its threshold.
func severityFor(value, threshold float64) models.Severity {
	switch {
	case value >= threshold*2:
		return models.SeverityHigh
	case value >= threshold*1.5:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
