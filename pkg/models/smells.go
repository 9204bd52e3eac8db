package models

import "fmt"

// SmellKind identifies a heuristic antipattern.
type SmellKind string

const (
	SmellLongMethod        SmellKind = "long_method"
	SmellLongParameterList SmellKind = "long_parameter_list"
	SmellDuplicateCode     SmellKind = "duplicate_code"
	SmellComplexCondition  SmellKind = "complex_conditional"
	SmellLargeClass        SmellKind = "large_class"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Sensitivity gates which smell detectors run and how aggressive their
// thresholds are.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ParseSensitivity validates a sensitivity level name.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(s) {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		return Sensitivity(s), nil
	}
	return "", fmt.Errorf("unknown sensitivity level %q", s)
}

// SmellFinding is one detected smell instance.
type SmellFinding struct {
	Kind        SmellKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Path        string    `json:"path"`
	Unit        string    `json:"unit,omitempty"`
	StartLine   int       `json:"start_line"`
	EndLine     int       `json:"end_line,omitempty"`
	Description string    `json:"description"`
	Suggestion  string    `json:"suggestion,omitempty"`
}

// SmellsResult groups findings for one detection run.
type SmellsResult struct {
	Sensitivity   Sensitivity                  `json:"sensitivity"`
	FilesAnalyzed int                          `json:"files_analyzed"`
	TotalSmells   int                          `json:"total_smells"`
	Findings      []SmellFinding               `json:"findings"`
	ByKind        map[SmellKind][]SmellFinding `json:"smells_by_kind"`
	Warnings      []string                     `json:"warnings,omitempty"`
}

// Group rebuilds the by-kind index and total count from Findings.
func (r *SmellsResult) Group() {
	r.TotalSmells = len(r.Findings)
	r.ByKind = make(map[SmellKind][]SmellFinding)
	for _, f := range r.Findings {
		r.ByKind[f.Kind] = append(r.ByKind[f.Kind], f)
	}
}
