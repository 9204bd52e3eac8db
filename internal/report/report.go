// Package report turns stored analysis snapshots into rendered reports.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/pkg/models"
)

// Generate renders the requested sections of a snapshot into a report.
// An empty section list selects every section. Sections whose facet was
// not analyzed are noted in text and markdown output and omitted from
// JSON output.
func Generate(snap *models.AnalysisSnapshot, format models.ReportFormat, sections []string) (*models.Report, error) {
	normalized, err := models.NormalizeSections(sections)
	if err != nil {
		return nil, models.NewError(models.ErrInvalidParameter, "report.generate", err)
	}

	now := time.Now().UTC()

	var content string
	switch format {
	case models.ReportJSON:
		content, err = renderJSON(snap, normalized, now)
	case models.ReportText:
		content, err = renderText(snap, normalized)
	case models.ReportMarkdown:
		content, err = renderMarkdown(snap, normalized)
	default:
		return nil, models.Errorf(models.ErrInvalidParameter, "report.generate", "unknown report format %q", format)
	}
	if err != nil {
		return nil, models.Classify("report.generate", err)
	}

	return &models.Report{
		AnalysisID:  snap.ID,
		Format:      format,
		Sections:    normalized,
		GeneratedAt: now,
		Content:     content,
	}, nil
}

// document fixes the JSON key order for rendered reports.
type document struct {
	AnalysisID     string    `json:"analysis_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	RepositoryInfo any       `json:"repository_info,omitempty"`
	CodeMetrics    any       `json:"code_metrics,omitempty"`
	CodeSmells     any       `json:"code_smells,omitempty"`
	Contributors   any       `json:"contributors,omitempty"`
	Hotspots       any       `json:"hotspots,omitempty"`
	Partial        bool      `json:"partial,omitempty"`
	Warnings       []string  `json:"warnings,omitempty"`
}

func renderJSON(snap *models.AnalysisSnapshot, sections []models.Section, now time.Time) (string, error) {
	doc := document{
		AnalysisID:  snap.ID,
		GeneratedAt: now,
		Partial:     snap.Partial,
		Warnings:    snap.Warnings,
	}

	for _, s := range sections {
		switch s {
		case models.SectionRepositoryInfo:
			doc.RepositoryInfo = snap.Repository
		case models.SectionCodeMetrics:
			if snap.Metrics != nil {
				doc.CodeMetrics = snap.Metrics
			}
		case models.SectionCodeSmells:
			if snap.Smells != nil {
				doc.CodeSmells = snap.Smells
			}
		case models.SectionContributors:
			if snap.Contributors != nil {
				doc.Contributors = snap.Contributors
			}
		case models.SectionHotspots:
			if snap.Hotspots != nil {
				doc.Hotspots = snap.Hotspots
			}
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func renderText(snap *models.AnalysisSnapshot, sections []models.Section) (string, error) {
	var buf bytes.Buffer
	if err := buildCompound(snap, sections).RenderText(&buf, false); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderMarkdown(snap *models.AnalysisSnapshot, sections []models.Section) (string, error) {
	var buf bytes.Buffer
	if err := buildCompound(snap, sections).RenderMarkdown(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildCompound(snap *models.AnalysisSnapshot, sections []models.Section) *output.Compound {
	compound := &output.Compound{
		Title: fmt.Sprintf("Analysis %s", snap.ID),
	}

	for _, s := range sections {
		switch s {
		case models.SectionRepositoryInfo:
			compound.Sections = append(compound.Sections, repositorySection(snap))
		case models.SectionCodeMetrics:
			compound.Sections = append(compound.Sections, metricsTable(snap.Metrics))
		case models.SectionCodeSmells:
			compound.Sections = append(compound.Sections, smellsTable(snap.Smells))
		case models.SectionContributors:
			compound.Sections = append(compound.Sections, contributorsTable(snap.Contributors))
		case models.SectionHotspots:
			compound.Sections = append(compound.Sections, hotspotsTable(snap.Hotspots))
		}
	}

	if len(snap.Warnings) > 0 {
		compound.Sections = append(compound.Sections, &output.Section{
			Title:   "Warnings",
			Content: "- " + strings.Join(snap.Warnings, "\n- "),
		})
	}

	return compound
}

func repositorySection(snap *models.AnalysisSnapshot) output.Renderable {
	info := snap.Repository
	var b strings.Builder
	fmt.Fprintf(&b, "Path:          %s\n", info.Path)
	fmt.Fprintf(&b, "Branch:        %s\n", info.Branch)
	fmt.Fprintf(&b, "Commits:       %s\n", humanize.Comma(int64(info.TotalCommits)))
	fmt.Fprintf(&b, "Size:          %s\n", humanize.Bytes(uint64(info.SizeBytes)))
	if !info.LastCommit.IsZero() {
		fmt.Fprintf(&b, "Last commit:   %s\n", humanize.Time(info.LastCommit))
	}
	fmt.Fprintf(&b, "Analyzed:      %s", snap.CreatedAt.Format(time.RFC3339))

	return &output.Section{
		Title:   "Repository",
		Content: b.String(),
		Data:    info,
	}
}

func metricsTable(m *models.MetricsResult) output.Renderable {
	if m == nil {
		return missingSection("Code Metrics")
	}

	rows := make([][]string, 0, len(m.Files))
	for _, f := range m.Files {
		rows = append(rows, []string{
			f.Path,
			strconv.Itoa(f.LinesOfCode),
			fmt.Sprintf("%.1f", f.CyclomaticComplexity),
			fmt.Sprintf("%.1f", f.MaintainabilityIndex),
			fmt.Sprintf("%.1f", f.TechnicalDebt),
		})
	}

	footer := []string{
		fmt.Sprintf("Total (%d files)", m.Totals.Files),
		humanize.Comma(int64(m.Totals.LinesOfCode)),
		fmt.Sprintf("%.1f", m.Totals.CyclomaticComplexity),
		fmt.Sprintf("%.1f", m.Totals.MaintainabilityIndex),
		fmt.Sprintf("%.1f", m.Totals.TechnicalDebt),
	}

	return output.NewTable("Code Metrics",
		[]string{"Path", "LOC", "Complexity", "Maintainability", "Debt"},
		rows, footer, m)
}

func smellsTable(s *models.SmellsResult) output.Renderable {
	if s == nil {
		return missingSection("Code Smells")
	}

	rows := make([][]string, 0, len(s.Findings))
	for _, f := range s.Findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.Path, f.StartLine),
			string(f.Kind),
			string(f.Severity),
			f.Description,
		})
	}

	title := fmt.Sprintf("Code Smells (%d found, sensitivity %s)", s.TotalSmells, s.Sensitivity)
	return output.NewTable(title,
		[]string{"Location", "Kind", "Severity", "Description"},
		rows, nil, s)
}

func contributorsTable(c *models.ContributorsResult) output.Renderable {
	if c == nil {
		return missingSection("Contributors")
	}

	rows := make([][]string, 0, len(c.Contributors))
	for _, stat := range c.Contributors {
		rows = append(rows, []string{
			stat.Name,
			stat.Email,
			strconv.Itoa(stat.Commits),
			fmt.Sprintf("%.1f%%", stat.OwnershipPercent),
			fmt.Sprintf("+%d/-%d", stat.LinesAdded, stat.LinesRemoved),
		})
	}

	title := fmt.Sprintf("Contributors (%d over %s)", c.TotalContributors, c.TimeRange)
	return output.NewTable(title,
		[]string{"Name", "Email", "Commits", "Ownership", "Churn"},
		rows, nil, c)
}

func hotspotsTable(h *models.HotspotsResult) output.Renderable {
	if h == nil {
		return missingSection("Hotspots")
	}

	rows := make([][]string, 0, len(h.Entries))
	for _, e := range h.Entries {
		rows = append(rows, []string{
			e.Path,
			strconv.Itoa(e.Commits),
			fmt.Sprintf("%.2f", e.ChangeFrequency),
			fmt.Sprintf("%.2f", e.RiskScore),
		})
	}

	title := fmt.Sprintf("Hotspots (threshold %.2f)", h.Threshold)
	return output.NewTable(title,
		[]string{"Path", "Commits", "Frequency", "Risk"},
		rows, nil, h)
}

func missingSection(title string) output.Renderable {
	return &output.Section{
		Title:   title,
		Content: "not included in this analysis",
	}
}
