// Package models defines the shared data model for repository analysis:
// raw facts fetched from version control, computed metrics and findings,
// and the immutable analysis snapshot that bundles them.
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileChange records line deltas for one file within a commit.
type FileChange struct {
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`
}

// CommitFact is one commit as materialized by the repository facts
// provider. Immutable once produced.
type CommitFact struct {
	Hash        string                `json:"hash"`
	AuthorName  string                `json:"author_name"`
	AuthorEmail string                `json:"author_email"`
	Timestamp   time.Time             `json:"timestamp"`
	Message     string                `json:"message"`
	Files       map[string]FileChange `json:"files"`
}

// FileFact is an immutable snapshot of one file at the analyzed revision.
type FileFact struct {
	Path string `json:"path"`
	Text string `json:"-"`
	Size int64  `json:"size"`
}

// Extension returns the lowercased file extension including the dot.
func (f FileFact) Extension() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// Lines splits the file text into lines. The trailing empty line produced
// by a final newline is dropped.
func (f FileFact) Lines() []string {
	lines := strings.Split(f.Text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// RepositoryInfo summarizes the analyzed repository.
type RepositoryInfo struct {
	Path         string    `json:"path"`
	Branch       string    `json:"branch"`
	TotalCommits int       `json:"total_commits"`
	SizeBytes    int64     `json:"size_bytes"`
	LastCommit   time.Time `json:"last_commit"`
}
