// Package hotspot ranks files by combining how often they change with how
// risky their current code measures.
package hotspot

import (
	"math"
	"sort"

	"github.com/repolens/repolens/pkg/models"
)

// DefaultThreshold is the minimum normalized change frequency a file needs
// to appear in the ranking.
const DefaultThreshold = 0.8

// baseRiskFactor is the risk multiplier for a file with no metric signal;
// a frequently changed file is never fully risk free.
const baseRiskFactor = 0.4

// Analyzer ranks change hotspots.
type Analyzer struct {
	threshold float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the change-frequency cutoff. Values are clamped
// into [0, 1].
func WithThreshold(t float64) Option {
	return func(a *Analyzer) {
		a.threshold = math.Min(1, math.Max(0, t))
	}
}

// New creates a new hotspot analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze ranks files touched in the commit history. Change frequency is
// normalized against the busiest file, so the most-changed file always
// scores 1.0. Risk grows with both frequency and the maintainability
// deficit of the file's current code; metricsResult may be nil, in which
// case every file carries the base risk factor. Results are ordered by
// risk, then commit count, then path.
func (a *Analyzer) Analyze(commits []models.CommitFact, metricsResult *models.MetricsResult) (*models.HotspotsResult, error) {
	counts := make(map[string]int)
	for _, c := range commits {
		for path := range c.Files {
			counts[path]++
		}
	}

	result := &models.HotspotsResult{
		Threshold:     a.threshold,
		FilesAnalyzed: len(counts),
		Entries:       make([]models.HotspotEntry, 0, len(counts)),
	}
	if len(counts) == 0 {
		return result, nil
	}

	maxCommits := 0
	for _, n := range counts {
		if n > maxCommits {
			maxCommits = n
		}
	}

	miByPath := make(map[string]float64)
	if metricsResult != nil {
		for _, fm := range metricsResult.Files {
			miByPath[fm.Path] = fm.MaintainabilityIndex
		}
	}

	for path, n := range counts {
		freq := float64(n) / float64(maxCommits)
		if freq < a.threshold {
			continue
		}

		factor := baseRiskFactor
		if mi, ok := miByPath[path]; ok {
			factor = baseRiskFactor + (1-baseRiskFactor)*(1-mi/100)
		}

		result.Entries = append(result.Entries, models.HotspotEntry{
			Path:            path,
			ChangeFrequency: round2(freq),
			Commits:         n,
			RiskScore:       round2(freq * factor),
		})
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return models.LessHotspot(result.Entries[i], result.Entries[j])
	})

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
