// Package contributors aggregates commit history into per-author activity
// and ownership statistics.
package contributors

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/repolens/repolens/pkg/models"
)

// Analyzer computes contributor statistics from commit facts.
type Analyzer struct{}

// New creates a new contributor analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// ParseTimeRange turns a human range like "all", "30d", "6 months" or
// "1 year" into a cutoff time. A nil cutoff means unbounded history.
func ParseTimeRange(s string, now time.Time) (*time.Time, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))
	if trimmed == "" || trimmed == "all" {
		return nil, nil
	}

	// Compact form: 30d, 12w, 6m, 1y.
	if n, unit, ok := splitCompact(trimmed); ok {
		cutoff, err := applyUnit(now, n, unit)
		if err != nil {
			return nil, fmt.Errorf("invalid time range %q: %w", s, err)
		}
		return cutoff, nil
	}

	// Spelled out form: "6 months", "1 year", "2 weeks".
	fields := strings.Fields(trimmed)
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[0])
		if err == nil && n > 0 {
			unit := strings.TrimSuffix(fields[1], "s")
			cutoff, err := applyUnit(now, n, unit)
			if err != nil {
				return nil, fmt.Errorf("invalid time range %q: %w", s, err)
			}
			return cutoff, nil
		}
	}

	return nil, fmt.Errorf("invalid time range %q (expected \"all\", \"30d\", or \"6 months\")", s)
}

func splitCompact(s string) (int, string, bool) {
	if len(s) < 2 {
		return 0, "", false
	}
	unit := s[len(s)-1:]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	switch unit {
	case "d":
		return n, "day", true
	case "w":
		return n, "week", true
	case "m":
		return n, "month", true
	case "y":
		return n, "year", true
	}
	return 0, "", false
}

func applyUnit(now time.Time, n int, unit string) (*time.Time, error) {
	var cutoff time.Time
	switch unit {
	case "day":
		cutoff = now.AddDate(0, 0, -n)
	case "week":
		cutoff = now.AddDate(0, 0, -7*n)
	case "month":
		cutoff = now.AddDate(0, -n, 0)
	case "year":
		cutoff = now.AddDate(-n, 0, 0)
	default:
		return nil, fmt.Errorf("unknown unit %q", unit)
	}
	return &cutoff, nil
}

// Analyze folds commits into per-contributor statistics, keeping only
// commits at or after the parsed time range cutoff. A window with no
// commits yields an empty contributor list, not an error.
func (a *Analyzer) Analyze(commits []models.CommitFact, timeRange string, now time.Time) (*models.ContributorsResult, error) {
	cutoff, err := ParseTimeRange(timeRange, now)
	if err != nil {
		return nil, models.NewError(models.ErrInvalidParameter, "contributors.analyze", err)
	}
	if timeRange == "" {
		timeRange = "all"
	}

	type authorAgg struct {
		stat  models.ContributorStat
		files map[string]bool
	}
	byAuthor := make(map[string]*authorAgg)
	total := 0

	for _, c := range commits {
		if cutoff != nil && c.Timestamp.Before(*cutoff) {
			continue
		}
		total++

		key := c.AuthorEmail
		if key == "" {
			key = c.AuthorName
		}

		agg, ok := byAuthor[key]
		if !ok {
			agg = &authorAgg{
				stat: models.ContributorStat{
					Name:        c.AuthorName,
					Email:       c.AuthorEmail,
					FirstCommit: c.Timestamp,
					LastCommit:  c.Timestamp,
				},
				files: make(map[string]bool),
			}
			byAuthor[key] = agg
		}

		agg.stat.Commits++
		if c.Timestamp.Before(agg.stat.FirstCommit) {
			agg.stat.FirstCommit = c.Timestamp
		}
		if c.Timestamp.After(agg.stat.LastCommit) {
			agg.stat.LastCommit = c.Timestamp
		}
		for path, change := range c.Files {
			agg.stat.LinesAdded += change.LinesAdded
			agg.stat.LinesRemoved += change.LinesRemoved
			agg.files[path] = true
		}
	}

	result := &models.ContributorsResult{
		TimeRange:    timeRange,
		TotalCommits: total,
		Contributors: make([]models.ContributorStat, 0, len(byAuthor)),
	}

	for _, agg := range byAuthor {
		agg.stat.FilesTouched = len(agg.files)
		agg.stat.OwnershipPercent = round2(float64(agg.stat.Commits) / float64(total) * 100)
		result.Contributors = append(result.Contributors, agg.stat)
	}

	sort.Slice(result.Contributors, func(i, j int) bool {
		a, b := result.Contributors[i], result.Contributors[j]
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		if !a.FirstCommit.Equal(b.FirstCommit) {
			return a.FirstCommit.Before(b.FirstCommit)
		}
		return a.Name < b.Name
	})
	result.TotalContributors = len(result.Contributors)

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
