// Package remote resolves remote repository references and clones them
// into a temporary directory for analysis. A path that exists locally is
// never treated as remote.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source is a remote repository to clone before analysis.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // set after a successful Clone
}

// Parse detects whether path refers to a remote repository. It returns
// nil when path exists on the filesystem or does not look remote; local
// paths always take precedence.
//
// Recognized forms:
//
//	owner/repo              GitHub shorthand
//	github.com/owner/repo   host without scheme
//	https://host/path       full URL
//	git@host:path           SSH
//
// Any form may carry an @ref suffix naming a branch, tag, or SHA.
func Parse(path string) *Source {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	ref := ""
	if !strings.HasPrefix(path, "git@") {
		if idx := strings.LastIndex(path, "@"); idx != -1 {
			ref = path[idx+1:]
			path = path[:idx]
		}
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "git@"):
		return &Source{URL: path, Ref: ref}
	case hasHostPrefix(path):
		return &Source{URL: "https://" + path, Ref: ref}
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}
	}
	return nil
}

// hasHostPrefix reports whether the first path segment looks like a
// hostname, as in github.com/owner/repo.
func hasHostPrefix(path string) bool {
	idx := strings.Index(path, "/")
	if idx <= 0 {
		return false
	}
	host := path[:idx]
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".")
}

// isGitHubShorthand reports whether path matches owner/repo: exactly one
// slash, non-empty parts, no dots before the slash.
func isGitHubShorthand(path string) bool {
	idx := strings.Index(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	return !strings.Contains(path[:idx], ".")
}

// Clone clones the source into a fresh temp directory and checks out
// Ref when one was given. Progress output goes to progress, which may
// be io.Discard.
func (s *Source) Clone(ctx context.Context, progress io.Writer) error {
	dir, err := os.MkdirTemp("", "repolens-clone-")
	if err != nil {
		return fmt.Errorf("creating clone directory: %w", err)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      s.URL,
		Progress: progress,
	})
	if err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("cloning %s: %w", s.URL, err)
	}

	if s.Ref != "" {
		hash, err := repo.ResolveRevision(plumbing.Revision(s.Ref))
		if err != nil {
			os.RemoveAll(dir)
			return fmt.Errorf("resolving ref %s: %w", s.Ref, err)
		}
		wt, err := repo.Worktree()
		if err != nil {
			os.RemoveAll(dir)
			return err
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
			os.RemoveAll(dir)
			return fmt.Errorf("checking out %s: %w", s.Ref, err)
		}
	}

	s.CloneDir = dir
	return nil
}

// Cleanup removes the clone directory. Safe to call before Clone.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
