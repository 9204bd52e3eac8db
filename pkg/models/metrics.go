package models

import "fmt"

// MetricKind identifies one code-quality metric.
type MetricKind string

const (
	MetricLinesOfCode          MetricKind = "lines_of_code"
	MetricCyclomaticComplexity MetricKind = "cyclomatic_complexity"
	MetricMaintainabilityIndex MetricKind = "maintainability_index"
	MetricTechnicalDebt        MetricKind = "technical_debt"
)

// RepositoryScope is the Metric scope used for whole-repository aggregates.
const RepositoryScope = ""

// AllMetricKinds returns every supported metric kind in canonical order.
func AllMetricKinds() []MetricKind {
	return []MetricKind{
		MetricLinesOfCode,
		MetricCyclomaticComplexity,
		MetricMaintainabilityIndex,
		MetricTechnicalDebt,
	}
}

// ParseMetricKind validates a metric kind name.
func ParseMetricKind(s string) (MetricKind, error) {
	switch MetricKind(s) {
	case MetricLinesOfCode, MetricCyclomaticComplexity,
		MetricMaintainabilityIndex, MetricTechnicalDebt:
		return MetricKind(s), nil
	}
	return "", fmt.Errorf("unknown metric kind %q", s)
}

// Metric is one computed value, scoped to a file path or to the whole
// repository (empty scope).
type Metric struct {
	Kind  MetricKind `json:"kind"`
	Value float64    `json:"value"`
	Scope string     `json:"scope,omitempty"`
}

// FileMetrics collects the per-file metric values for one file.
type FileMetrics struct {
	Path                 string  `json:"path"`
	LinesOfCode          int     `json:"lines_of_code"`
	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
	TechnicalDebt        float64 `json:"technical_debt"`
	Functions            int     `json:"functions"`
}

// MetricsResult is the metrics calculator output: per-file values plus the
// repository-scope aggregates derived from them.
type MetricsResult struct {
	Files    []FileMetrics `json:"files"`
	Totals   RepoMetrics   `json:"totals"`
	Skipped  []string      `json:"skipped,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// RepoMetrics holds repository-scope aggregates. LinesOfCode and
// TechnicalDebt are sums over files; MaintainabilityIndex is the
// LOC-weighted mean; CyclomaticComplexity is the plain mean.
type RepoMetrics struct {
	Files                int     `json:"files"`
	LinesOfCode          int     `json:"lines_of_code"`
	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
	TechnicalDebt        float64 `json:"technical_debt"`
}

// Metrics flattens the result into scoped Metric values, file metrics
// first, repository aggregates last.
func (r *MetricsResult) Metrics() []Metric {
	out := make([]Metric, 0, len(r.Files)*4+4)
	for _, f := range r.Files {
		out = append(out,
			Metric{Kind: MetricLinesOfCode, Value: float64(f.LinesOfCode), Scope: f.Path},
			Metric{Kind: MetricCyclomaticComplexity, Value: f.CyclomaticComplexity, Scope: f.Path},
			Metric{Kind: MetricMaintainabilityIndex, Value: f.MaintainabilityIndex, Scope: f.Path},
			Metric{Kind: MetricTechnicalDebt, Value: f.TechnicalDebt, Scope: f.Path},
		)
	}
	out = append(out,
		Metric{Kind: MetricLinesOfCode, Value: float64(r.Totals.LinesOfCode), Scope: RepositoryScope},
		Metric{Kind: MetricCyclomaticComplexity, Value: r.Totals.CyclomaticComplexity, Scope: RepositoryScope},
		Metric{Kind: MetricMaintainabilityIndex, Value: r.Totals.MaintainabilityIndex, Scope: RepositoryScope},
		Metric{Kind: MetricTechnicalDebt, Value: r.Totals.TechnicalDebt, Scope: RepositoryScope},
	)
	return out
}
