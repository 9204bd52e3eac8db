package models

import "time"

// ContributorStat aggregates one author's activity inside an analysis
// window. OwnershipPercent is that author's share of in-window commits.
type ContributorStat struct {
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Commits          int       `json:"commits"`
	LinesAdded       int       `json:"lines_added"`
	LinesRemoved     int       `json:"lines_removed"`
	FilesTouched     int       `json:"files_touched"`
	OwnershipPercent float64   `json:"ownership_percentage"`
	FirstCommit      time.Time `json:"first_commit"`
	LastCommit       time.Time `json:"last_commit"`
}

// ContributorsResult is the contributor analyzer output for one window.
type ContributorsResult struct {
	TimeRange         string            `json:"time_range"`
	TotalCommits      int               `json:"total_commits"`
	TotalContributors int               `json:"total_contributors"`
	Contributors      []ContributorStat `json:"contributors"`
}
