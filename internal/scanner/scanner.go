// Package scanner decides which files participate in analysis, combining
// configured exclusion patterns with the repository's .gitignore files.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

// Scanner filters repository files down to analyzable sources.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from both config and .gitignore
// files. Config patterns are parsed as gitignore patterns and combined with
// the repository's own ignore files.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		gitRoot := findGitRoot(root)
		if gitRoot != "" {
			fs := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if s.config.ShouldExclude(path) {
		return true
	}
	if len(s.matchers) == 0 {
		return false
	}

	pathParts := strings.Split(path, "/")
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// Filter returns the subset of repository files that should be analyzed.
// Paths are repository-relative with forward slashes, as produced by the
// version control layer.
func (s *Scanner) Filter(root string, files []models.FileFact) []models.FileFact {
	s.loadExcludePatterns(root)

	kept := make([]models.FileFact, 0, len(files))
	for _, f := range files {
		if s.isExcluded(f.Path, false) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// ScanFile checks if a single on-disk file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	if info.IsDir() {
		return false, nil
	}

	if len(s.matchers) == 0 {
		s.loadExcludePatterns(filepath.Dir(path))
	}

	if s.isExcluded(filepath.Base(path), false) {
		return false, nil
	}

	return true, nil
}

// FilterBySize drops files that exceed the maximum size in bytes.
// Returns the filtered list and the count of skipped files.
// A maxSize of 0 disables the filter.
func FilterBySize(files []models.FileFact, maxSize int64) ([]models.FileFact, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]models.FileFact, 0, len(files))
	skipped := 0

	for _, f := range files {
		if f.Size > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}

	return filtered, skipped
}
