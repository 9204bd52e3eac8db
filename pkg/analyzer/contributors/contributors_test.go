package contributors

import (
	"math"
	"testing"
	"time"

	"github.com/repolens/repolens/pkg/models"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func commit(author, email string, when time.Time, files map[string]models.FileChange) models.CommitFact {
	return models.CommitFact{
		Hash:        when.Format("20060102150405"),
		AuthorName:  author,
		AuthorEmail: email,
		Timestamp:   when,
		Files:       files,
	}
}

func TestAnalyzeAggregates(t *testing.T) {
	commits := []models.CommitFact{
		commit("Alice", "alice@example.com", base, map[string]models.FileChange{
			"main.go": {LinesAdded: 10, LinesRemoved: 2},
		}),
		commit("Alice", "alice@example.com", base.Add(time.Hour), map[string]models.FileChange{
			"main.go": {LinesAdded: 5, LinesRemoved: 1},
			"util.go": {LinesAdded: 20},
		}),
		commit("Bob", "bob@example.com", base.Add(2*time.Hour), map[string]models.FileChange{
			"util.go": {LinesAdded: 3, LinesRemoved: 3},
		}),
	}

	result, err := New().Analyze(commits, "all", base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.TotalCommits != 3 {
		t.Errorf("TotalCommits = %d, want 3", result.TotalCommits)
	}
	if result.TotalContributors != 2 {
		t.Fatalf("TotalContributors = %d, want 2", result.TotalContributors)
	}

	alice := result.Contributors[0]
	if alice.Name != "Alice" {
		t.Fatalf("first contributor = %q, want Alice (most commits)", alice.Name)
	}
	if alice.Commits != 2 {
		t.Errorf("Alice.Commits = %d, want 2", alice.Commits)
	}
	if alice.LinesAdded != 35 {
		t.Errorf("Alice.LinesAdded = %d, want 35", alice.LinesAdded)
	}
	if alice.LinesRemoved != 3 {
		t.Errorf("Alice.LinesRemoved = %d, want 3", alice.LinesRemoved)
	}
	if alice.FilesTouched != 2 {
		t.Errorf("Alice.FilesTouched = %d, want 2", alice.FilesTouched)
	}
	if alice.FirstCommit != base || alice.LastCommit != base.Add(time.Hour) {
		t.Errorf("Alice commit window = %v..%v", alice.FirstCommit, alice.LastCommit)
	}
}

func TestOwnershipPercentagesSumTo100(t *testing.T) {
	commits := []models.CommitFact{
		commit("A", "a@x.com", base, nil),
		commit("B", "b@x.com", base, nil),
		commit("C", "c@x.com", base, nil),
	}

	result, err := New().Analyze(commits, "all", base)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	sum := 0.0
	for _, c := range result.Contributors {
		sum += c.OwnershipPercent
	}
	if math.Abs(sum-100) > 0.05 {
		t.Errorf("ownership sum = %v, want ~100", sum)
	}
}

func TestAnalyzeTimeWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	commits := []models.CommitFact{
		commit("Old", "old@x.com", now.AddDate(-1, 0, 0), nil),
		commit("New", "new@x.com", now.AddDate(0, 0, -5), nil),
	}

	result, err := New().Analyze(commits, "30d", now)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.TotalCommits != 1 {
		t.Fatalf("TotalCommits = %d, want 1 (old commit filtered)", result.TotalCommits)
	}
	if result.Contributors[0].Name != "New" {
		t.Errorf("kept contributor = %q, want New", result.Contributors[0].Name)
	}
	if result.Contributors[0].OwnershipPercent != 100 {
		t.Errorf("sole contributor ownership = %v, want 100", result.Contributors[0].OwnershipPercent)
	}
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	commits := []models.CommitFact{
		commit("Old", "old@x.com", now.AddDate(-2, 0, 0), nil),
	}

	result, err := New().Analyze(commits, "1 week", now)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.TotalCommits != 0 {
		t.Errorf("TotalCommits = %d, want 0", result.TotalCommits)
	}
	if len(result.Contributors) != 0 {
		t.Errorf("Contributors = %v, want empty list", result.Contributors)
	}
}

func TestAnalyzeNoCommits(t *testing.T) {
	result, err := New().Analyze(nil, "all", base)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(result.Contributors) != 0 || result.TotalCommits != 0 {
		t.Errorf("empty history should yield empty result, got %+v", result)
	}
}

func TestSameEmailDifferentNameMerges(t *testing.T) {
	commits := []models.CommitFact{
		commit("Alice Smith", "alice@x.com", base, nil),
		commit("alice", "alice@x.com", base.Add(time.Hour), nil),
	}

	result, err := New().Analyze(commits, "all", base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if result.TotalContributors != 1 {
		t.Errorf("TotalContributors = %d, want 1 (merged by email)", result.TotalContributors)
	}
	if result.Contributors[0].Commits != 2 {
		t.Errorf("merged commits = %d, want 2", result.Contributors[0].Commits)
	}
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    *time.Time
		wantErr bool
	}{
		{"all", nil, false},
		{"", nil, false},
		{"30d", timePtr(now.AddDate(0, 0, -30)), false},
		{"2w", timePtr(now.AddDate(0, 0, -14)), false},
		{"6m", timePtr(now.AddDate(0, -6, 0)), false},
		{"1y", timePtr(now.AddDate(-1, 0, 0)), false},
		{"6 months", timePtr(now.AddDate(0, -6, 0)), false},
		{"1 year", timePtr(now.AddDate(-1, 0, 0)), false},
		{"2 weeks", timePtr(now.AddDate(0, 0, -14)), false},
		{"10 days", timePtr(now.AddDate(0, 0, -10)), false},
		{"yesterday", nil, true},
		{"-5d", nil, true},
		{"0d", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeRange(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeRange(%q) error: %v", tt.in, err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseTimeRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("ParseTimeRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEqualCommitsTieBrokenByEarliestFirstCommit(t *testing.T) {
	commits := []models.CommitFact{
		commit("Zed", "zed@example.com", base, map[string]models.FileChange{
			"a.go": {LinesAdded: 1},
		}),
		commit("Adam", "adam@example.com", base.Add(time.Hour), map[string]models.FileChange{
			"b.go": {LinesAdded: 1},
		}),
	}

	result, err := New().Analyze(commits, "all", base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.Contributors[0].Name != "Zed" {
		t.Errorf("first contributor = %q, want Zed (earliest first commit on tied counts)", result.Contributors[0].Name)
	}
	if result.Contributors[1].Name != "Adam" {
		t.Errorf("second contributor = %q, want Adam", result.Contributors[1].Name)
	}
}
