// Package watch monitors a repository tree and reports changed source
// files after a debounce window, so analysis can re-run while editors
// are still writing.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/repolens/repolens/internal/scanner"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/parser"
)

const flushInterval = 100 * time.Millisecond

// Watcher watches a directory tree recursively and invokes a callback
// for each supported source file once writes to it have settled.
type Watcher struct {
	fs       *fsnotify.Watcher
	cfg      *config.Config
	scan     *scanner.Scanner
	root     string
	debounce time.Duration
	onChange func(path string)
	log      *logrus.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher rooted at root. onChange runs in its own
// goroutine once a changed file has been quiet for debounce.
func New(root string, cfg *config.Config, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		fs:       fs,
		cfg:      cfg,
		scan:     scanner.NewScanner(cfg),
		root:     root,
		debounce: debounce,
		onChange: onChange,
		log:      logrus.New(),
		pending:  make(map[string]time.Time),
	}, nil
}

// SetLogger overrides the logger.
func (w *Watcher) SetLogger(log *logrus.Logger) {
	if log != nil {
		w.log = log
	}
}

// Run watches until ctx is cancelled. It returns ctx.Err() on
// cancellation and any error from setting up the directory walk.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}

	flush := time.NewTicker(flushInterval)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")

		case <-flush.C:
			w.flushSettled()
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// addTree registers root and every non-excluded directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		for _, excluded := range w.cfg.Exclude.Dirs {
			if info.Name() == excluded {
				return filepath.SkipDir
			}
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	// New directories join the watch so files created inside them
	// are picked up too.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.addTree(event.Name); err != nil {
				w.log.WithError(err).Warn("could not watch new directory")
			}
		}
		return
	}

	if ok, err := w.scan.ScanFile(event.Name); err != nil || !ok {
		return
	}
	if parser.DetectLanguage(event.Name) == parser.LangUnknown {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushSettled fires the callback for files whose last write is older
// than the debounce window.
func (w *Watcher) flushSettled() {
	w.mu.Lock()
	var ready []string
	now := time.Now()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if w.onChange != nil {
			go w.onChange(path)
		}
	}
}
