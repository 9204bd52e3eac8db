package smells

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/repolens/repolens/internal/fileproc"
	"github.com/repolens/repolens/pkg/models"
)

// window is one hashed run of normalized lines within a file.
type window struct {
	path      string
	startLine int
	endLine   int
}

// fileWindows pairs every window hashed in one file with its location.
type fileWindows struct {
	hashes  []uint64
	windows []window
}

// detectDuplicates finds blocks of normalized lines repeated across the
// repository. Every window of DuplicateMinLines meaningful lines is
// hashed; hashes seen in more than one place become findings. Hashing
// fans out per file; grouping and reporting stay single-threaded.
func (a *Analyzer) detectDuplicates(ctx context.Context, files []models.FileFact) []models.SmellFinding {
	size := a.thresholds.DuplicateMinLines

	perFile, _ := fileproc.ForEachFact(ctx, files, a.workers,
		func(f models.FileFact) (fileWindows, error) {
			return hashWindows(f, size), nil
		}, nil)

	groups := make(map[uint64][]window)
	for _, fw := range perFile {
		for i, h := range fw.hashes {
			groups[h] = append(groups[h], fw.windows[i])
		}
	}
	// ForEachFact returns files in completion order; resort each group so
	// the findings are stable run to run.
	for _, wins := range groups {
		sort.Slice(wins, func(i, j int) bool {
			if wins[i].path != wins[j].path {
				return wins[i].path < wins[j].path
			}
			return wins[i].startLine < wins[j].startLine
		})
	}

	// Keep only hashes seen in at least two distinct spots, then merge
	// overlapping windows so a long duplicated block reports once per site.
	reported := make(map[string][]window)
	var findings []models.SmellFinding

	hashes := make([]uint64, 0, len(groups))
	for h, wins := range groups {
		if len(wins) >= 2 {
			hashes = append(hashes, h)
		}
	}
	sort.Slice(hashes, func(i, j int) bool {
		a, b := groups[hashes[i]][0], groups[hashes[j]][0]
		if a.path != b.path {
			return a.path < b.path
		}
		return a.startLine < b.startLine
	})

	for _, h := range hashes {
		wins := groups[h]
		sites := len(wins)
		for _, w := range wins {
			if overlapsAny(reported[w.path], w) {
				continue
			}
			reported[w.path] = append(reported[w.path], w)
			findings = append(findings, models.SmellFinding{
				Kind:      models.SmellDuplicateCode,
				Severity:  duplicateSeverity(sites),
				Path:      w.path,
				StartLine: w.startLine,
				EndLine:   w.endLine,
				Description: fmt.Sprintf("block of %d lines duplicated across %d locations",
					a.thresholds.DuplicateMinLines, sites),
				Suggestion: "Consider extracting the duplicated block into a shared function",
			})
		}
	}

	return findings
}

// hashWindows slides a size-line window over the file's normalized lines.
func hashWindows(f models.FileFact, size int) fileWindows {
	lines, lineNos := normalizeLines(f)
	if len(lines) < size {
		return fileWindows{}
	}

	var fw fileWindows
	for i := 0; i+size <= len(lines); i++ {
		fw.hashes = append(fw.hashes, xxhash.Sum64String(strings.Join(lines[i:i+size], "\n")))
		fw.windows = append(fw.windows, window{
			path:      f.Path,
			startLine: lineNos[i],
			endLine:   lineNos[i+size-1],
		})
	}
	return fw
}

// overlapsAny reports whether w overlaps a window already reported for
// the same file.
func overlapsAny(seen []window, w window) bool {
	for _, s := range seen {
		if w.startLine <= s.endLine && s.startLine <= w.endLine {
			return true
		}
	}
	return false
}

// duplicateSeverity scales with how widely the block is repeated.
func duplicateSeverity(sites int) models.Severity {
	switch {
	case sites >= 4:
		return models.SeverityHigh
	case sites >= 3:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// normalizeLines strips blank and comment-only lines and collapses
// whitespace, returning the kept lines and their original line numbers.
func normalizeLines(f models.FileFact) ([]string, []int) {
	raw := f.Lines()
	lines := make([]string, 0, len(raw))
	lineNos := make([]int, 0, len(raw))

	for i, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}
		lines = append(lines, strings.Join(strings.Fields(trimmed), " "))
		lineNos = append(lineNos, i+1)
	}
	return lines, lineNos
}

// isCommentLine matches the common single-line comment leaders.
func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "--") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}
