// Package vcs extracts commit and tree facts from version controlled
// repositories.
package vcs

import (
	"context"
	"time"

	"github.com/repolens/repolens/pkg/models"
)

// FactsOptions configures a repository facts query.
type FactsOptions struct {
	// Branch names the branch to walk. Empty means the current HEAD.
	Branch string
	// Depth bounds how many commits of history are walked. Zero or
	// negative means unbounded.
	Depth int
	// Since drops commits authored before this time when set.
	Since *time.Time
	// WithFiles loads file contents from the tip tree.
	WithFiles bool
}

// Facts is everything the analyzers need from version control.
type Facts struct {
	Info    models.RepositoryInfo
	Commits []models.CommitFact
	Files   []models.FileFact
}

// Provider reads facts out of a repository.
type Provider interface {
	Facts(ctx context.Context, repoPath string, opts FactsOptions) (*Facts, error)
}
