package models

import (
	"fmt"
	"time"
)

// Facet names one of the independent analysis computations.
type Facet string

const (
	FacetMetrics      Facet = "metrics"
	FacetSmells       Facet = "smells"
	FacetContributors Facet = "contributors"
	FacetHotspots     Facet = "hotspots"
)

// AllFacets returns every facet in the order snapshots report them.
func AllFacets() []Facet {
	return []Facet{FacetMetrics, FacetSmells, FacetContributors, FacetHotspots}
}

// ParseFacet validates a facet name.
func ParseFacet(s string) (Facet, error) {
	switch Facet(s) {
	case FacetMetrics, FacetSmells, FacetContributors, FacetHotspots:
		return Facet(s), nil
	}
	return "", fmt.Errorf("unknown facet %q", s)
}

// FacetSet is the set of facets requested for one analysis run.
type FacetSet map[Facet]bool

// NewFacetSet builds a set from names; an empty list means all facets.
func NewFacetSet(names ...string) (FacetSet, error) {
	set := make(FacetSet)
	if len(names) == 0 {
		for _, f := range AllFacets() {
			set[f] = true
		}
		return set, nil
	}
	for _, name := range names {
		f, err := ParseFacet(name)
		if err != nil {
			return nil, err
		}
		set[f] = true
	}
	return set, nil
}

// Has reports whether the facet was requested.
func (s FacetSet) Has(f Facet) bool { return s[f] }

// AnalysisSnapshot is the immutable bundle of all computed facets for one
// analysis run, addressable by ID. Created once by the orchestrator and
// never mutated; re-analysis produces a fresh snapshot under a new ID.
type AnalysisSnapshot struct {
	ID              string              `json:"analysis_id"`
	RepoPath        string              `json:"repo_path"`
	Branch          string              `json:"branch"`
	Depth           int                 `json:"depth"`
	CreatedAt       time.Time           `json:"created_at"`
	TreeFingerprint string              `json:"tree_fingerprint"`
	Repository      RepositoryInfo      `json:"repository_info"`
	Metrics         *MetricsResult      `json:"code_metrics,omitempty"`
	Smells          *SmellsResult       `json:"code_smells,omitempty"`
	Contributors    *ContributorsResult `json:"contributors,omitempty"`
	Hotspots        *HotspotsResult     `json:"hotspots,omitempty"`
	Partial         bool                `json:"partial,omitempty"`
	Warnings        []string            `json:"warnings,omitempty"`
}
