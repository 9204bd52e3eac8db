package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/repolens/repolens/pkg/models"
)

// maxFileSize bounds how large a blob gets loaded into memory for analysis.
const maxFileSize = 1 << 20

// GitProvider reads repository facts using go-git.
type GitProvider struct{}

// NewGitProvider creates a go-git backed facts provider.
func NewGitProvider() *GitProvider {
	return &GitProvider{}
}

// Facts walks the commit history and tip tree of the repository at repoPath.
func (p *GitProvider) Facts(ctx context.Context, repoPath string, opts FactsOptions) (*Facts, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, models.Classify("vcs.facts", err)
	}
	if !info.IsDir() {
		return nil, models.NewError(models.ErrRepositoryNotFound, "vcs.facts",
			fmt.Errorf("%s is not a directory", repoPath))
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, models.Classify("vcs.facts", err)
	}

	branch, tip, err := resolveBranch(repo, opts.Branch)
	if err != nil {
		return nil, models.Classify("vcs.facts", err)
	}

	facts := &Facts{
		Info: models.RepositoryInfo{
			Path:   repoPath,
			Branch: branch,
		},
	}

	if err := p.walkCommits(ctx, repo, tip, opts, facts); err != nil {
		return nil, models.Classify("vcs.facts", err)
	}

	if opts.WithFiles {
		if err := p.loadTipFiles(ctx, repo, tip, facts); err != nil {
			return nil, models.Classify("vcs.facts", err)
		}
	}

	facts.Info.TotalCommits = len(facts.Commits)
	if len(facts.Commits) > 0 {
		facts.Info.LastCommit = facts.Commits[0].Timestamp
	}

	return facts, nil
}

// resolveBranch maps a branch name to its tip hash. A repository whose
// default branch is master still resolves when main was asked for, so the
// common default works on older repositories.
func resolveBranch(repo *git.Repository, branch string) (string, plumbing.Hash, error) {
	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return "", plumbing.ZeroHash, err
		}
		return head.Name().Short(), head.Hash(), nil
	}

	candidates := []string{branch}
	if branch == "main" {
		candidates = append(candidates, "master")
	}

	var lastErr error
	for _, name := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(name))
		if err == nil {
			return name, *hash, nil
		}
		lastErr = err
	}
	return "", plumbing.ZeroHash, models.NewError(models.ErrInvalidParameter, "vcs.facts",
		fmt.Errorf("branch %q not found: %w", branch, lastErr))
}

// walkCommits collects commit facts newest first, bounded by depth and the
// optional since cutoff. Merge commits count toward history but carry no
// per-file stats; their combined diffs would double count line churn.
func (p *GitProvider) walkCommits(ctx context.Context, repo *git.Repository, tip plumbing.Hash, opts FactsOptions, facts *Facts) error {
	iter, err := repo.Log(&git.LogOptions{From: tip})
	if err != nil {
		return err
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Depth > 0 && len(facts.Commits) >= opts.Depth {
			return storer.ErrStop
		}
		if opts.Since != nil && c.Author.When.Before(*opts.Since) {
			return storer.ErrStop
		}

		fact := models.CommitFact{
			Hash:        c.Hash.String(),
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			Timestamp:   c.Author.When,
			Message:     c.Message,
		}

		if c.NumParents() <= 1 {
			stats, err := c.Stats()
			if err == nil {
				fact.Files = make(map[string]models.FileChange, len(stats))
				for _, fs := range stats {
					fact.Files[fs.Name] = models.FileChange{
						LinesAdded:   fs.Addition,
						LinesRemoved: fs.Deletion,
					}
				}
			}
		}

		facts.Commits = append(facts.Commits, fact)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return err
	}
	return nil
}

// loadTipFiles reads every blob in the tip tree. Binary and oversized blobs
// keep their path and size but no text.
func (p *GitProvider) loadTipFiles(ctx context.Context, repo *git.Repository, tip plumbing.Hash, facts *Facts) error {
	commit, err := repo.CommitObject(tip)
	if err != nil {
		return err
	}
	tree, err := commit.Tree()
	if err != nil {
		return err
	}

	return tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		fact := models.FileFact{
			Path: f.Name,
			Size: f.Size,
		}
		facts.Info.SizeBytes += f.Size

		if f.Size <= maxFileSize {
			if bin, err := f.IsBinary(); err == nil && !bin {
				if text, err := f.Contents(); err == nil {
					fact.Text = text
				}
			}
		}

		facts.Files = append(facts.Files, fact)
		return nil
	})
}
