package models

import (
	"fmt"
	"time"
)

// ReportFormat selects the rendering of a generated report.
type ReportFormat string

const (
	ReportJSON     ReportFormat = "json"
	ReportText     ReportFormat = "text"
	ReportMarkdown ReportFormat = "markdown"
)

// ParseReportFormat validates a report format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(s) {
	case ReportJSON, ReportText, ReportMarkdown:
		return ReportFormat(s), nil
	}
	return "", fmt.Errorf("unknown report format %q (valid: json, text, markdown)", s)
}

// Section names one block of a generated report.
type Section string

const (
	SectionRepositoryInfo Section = "repository_info"
	SectionCodeMetrics    Section = "code_metrics"
	SectionCodeSmells     Section = "code_smells"
	SectionContributors   Section = "contributors"
	SectionHotspots       Section = "hotspots"
)

// AllSections returns every section in canonical report order.
func AllSections() []Section {
	return []Section{
		SectionRepositoryInfo,
		SectionCodeMetrics,
		SectionCodeSmells,
		SectionContributors,
		SectionHotspots,
	}
}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	switch Section(s) {
	case SectionRepositoryInfo, SectionCodeMetrics, SectionCodeSmells,
		SectionContributors, SectionHotspots:
		return Section(s), nil
	}
	return "", fmt.Errorf("unknown report section %q", s)
}

// NormalizeSections validates the requested section names and returns them
// in canonical order with duplicates removed. Empty input means all sections.
func NormalizeSections(names []string) ([]Section, error) {
	if len(names) == 0 {
		return AllSections(), nil
	}
	requested := make(map[Section]bool, len(names))
	for _, name := range names {
		sec, err := ParseSection(name)
		if err != nil {
			return nil, err
		}
		requested[sec] = true
	}
	out := make([]Section, 0, len(requested))
	for _, sec := range AllSections() {
		if requested[sec] {
			out = append(out, sec)
		}
	}
	return out, nil
}

// Report is the rendered view over a stored snapshot.
type Report struct {
	AnalysisID  string       `json:"analysis_id"`
	Format      ReportFormat `json:"format"`
	Sections    []Section    `json:"sections"`
	GeneratedAt time.Time    `json:"generated_at"`
	Content     string       `json:"content"`
}
