package models

// HotspotEntry ranks one file by combined change-frequency and code risk.
// ChangeFrequency is normalized against the most-changed file in the set,
// so the busiest file always has frequency 1.0.
type HotspotEntry struct {
	Path            string  `json:"path"`
	ChangeFrequency float64 `json:"change_frequency"`
	Commits         int     `json:"commits"`
	RiskScore       float64 `json:"risk_score"`
}

// HotspotsResult is the hotspot ranker output.
type HotspotsResult struct {
	Threshold     float64        `json:"threshold"`
	FilesAnalyzed int            `json:"files_analyzed"`
	Entries       []HotspotEntry `json:"hotspots"`
}

// LessHotspot reports whether entry a ranks strictly before entry b:
// higher risk first, ties broken by higher commit count, then by path.
func LessHotspot(a, b HotspotEntry) bool {
	if a.RiskScore != b.RiskScore {
		return a.RiskScore > b.RiskScore
	}
	if a.Commits != b.Commits {
		return a.Commits > b.Commits
	}
	return a.Path < b.Path
}
