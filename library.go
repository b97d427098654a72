package inkblog

import (
	"log/slog"
	"sync"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/search"
)

// Library is an in-memory cache of the loaded content and the search index
// built from it. Invalidate drops both; the next read reloads the directory
// and rebuilds the index from scratch.
type Library struct {
	dir       string
	threshold float64
	logger    *slog.Logger

	mu    sync.RWMutex
	set   *content.Set
	index *search.Index
}

// NewLibrary creates a Library over the content directory dir.
func NewLibrary(dir string, threshold float64, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{dir: dir, threshold: threshold, logger: logger}
}

// Dir returns the content directory.
func (l *Library) Dir() string { return l.dir }

// Invalidate clears the cache so the next read triggers a fresh load.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.set = nil
	l.index = nil
	l.mu.Unlock()
}

func (l *Library) load() error {
	if l.set != nil {
		return nil
	}
	set, err := content.Load(l.dir)
	if err != nil {
		return err
	}
	for _, e := range set.Errors() {
		l.logger.Warn("skipping invalid post", slog.String("path", e.Path), slog.String("error", e.Err.Error()))
	}
	l.set = set
	l.index = search.Build(set.Summaries(), search.WithThreshold(l.threshold))
	l.logger.Info("content loaded",
		slog.String("dir", l.dir),
		slog.Int("posts", len(set.All())),
		slog.Int("published", len(set.Published())),
		slog.Int("invalid", len(set.Errors())))
	return nil
}

// Snapshot returns the current content set and its index after ensuring the
// cache is loaded. It tries a read lock first; only takes a write lock if a
// reload is needed.
func (l *Library) Snapshot() (*content.Set, *search.Index, error) {
	l.mu.RLock()
	if l.set != nil {
		set, ix := l.set, l.index
		l.mu.RUnlock()
		return set, ix, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(); err != nil {
		return nil, nil, err
	}
	return l.set, l.index, nil
}

// Content returns the current content set.
func (l *Library) Content() (*content.Set, error) {
	set, _, err := l.Snapshot()
	return set, err
}

// Index returns the current search index.
func (l *Library) Index() (*search.Index, error) {
	_, ix, err := l.Snapshot()
	return ix, err
}

// Reload invalidates the cache and loads it again immediately.
func (l *Library) Reload() error {
	l.Invalidate()
	_, _, err := l.Snapshot()
	return err
}
