// Package testutil builds throwaway git repositories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Author pairs a name and email for test commits.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor is used when a commit does not name one.
var DefaultAuthor = Author{Name: "Test", Email: "test@example.com"}

// Repo wraps a temporary git repository on disk.
type Repo struct {
	Path string

	t    *testing.T
	repo *git.Repository
	when time.Time
}

// InitRepo creates an empty git repository in a temp directory.
func InitRepo(t *testing.T) *Repo {
	t.Helper()
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	return &Repo{
		Path: path,
		t:    t,
		repo: repo,
		when: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Commit writes the given files and commits them as author. Each call
// advances the commit timestamp by an hour so history stays ordered.
func (r *Repo) Commit(message string, author Author, files map[string]string) {
	r.t.Helper()

	if author.Name == "" {
		author = DefaultAuthor
	}

	w, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Failed to get worktree: %v", err)
	}

	for name, content := range files {
		path := filepath.Join(r.Path, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			r.t.Fatalf("Failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			r.t.Fatalf("Failed to write %s: %v", name, err)
		}
		if _, err := w.Add(name); err != nil {
			r.t.Fatalf("Failed to add %s: %v", name, err)
		}
	}

	r.when = r.when.Add(time.Hour)
	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  r.when,
		},
	})
	if err != nil {
		r.t.Fatalf("Failed to commit: %v", err)
	}
}

// CommitAt is Commit with an explicit timestamp, for time window tests.
func (r *Repo) CommitAt(message string, author Author, when time.Time, files map[string]string) {
	r.t.Helper()
	r.when = when.Add(-time.Hour)
	r.Commit(message, author, files)
}
