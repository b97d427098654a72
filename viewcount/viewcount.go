// Package viewcount persists per-post view counters and guards increments so
// a session counts each post at most once.
package viewcount

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrMissingCredentials is returned when a backend is configured without the
// credentials it needs. The backend refuses to initialise.
var ErrMissingCredentials = errors.New("viewcount: missing backend credentials")

// Store is a view-count backend.
type Store interface {
	// Increment adds one view to slug.
	Increment(ctx context.Context, slug string) error
	// Count returns the number of views for slug, 0 if it has none.
	Count(ctx context.Context, slug string) (int64, error)
	Close() error
}

// TransientError reports a backend or network failure. Callers recover by
// showing a message; the operation may succeed later.
type TransientError struct {
	Op   string
	Slug string
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("viewcount: %s %q: %v", e.Op, e.Slug, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is, or wraps, a *TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func transient(op, slug string, err error) error {
	return &TransientError{Op: op, Slug: slug, Err: err}
}

// Tracker increments each slug at most once over its lifetime. One Tracker
// corresponds to one viewing session.
type Tracker struct {
	store Store

	mu   sync.Mutex
	done map[string]bool
}

// NewTracker creates a Tracker backed by store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, done: make(map[string]bool)}
}

// Visit records a view of slug unless this session already counted it. It
// reports whether an increment was sent. A failed increment is not remembered,
// so a later visit retries.
func (t *Tracker) Visit(ctx context.Context, slug string) (bool, error) {
	t.mu.Lock()
	if t.done[slug] {
		t.mu.Unlock()
		return false, nil
	}
	t.done[slug] = true
	t.mu.Unlock()

	if err := t.store.Increment(ctx, slug); err != nil {
		t.mu.Lock()
		delete(t.done, slug)
		t.mu.Unlock()
		return false, err
	}
	return true, nil
}

// Visited reports whether this session already counted slug.
func (t *Tracker) Visited(slug string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done[slug]
}

// Count returns the current count for slug.
func (t *Tracker) Count(ctx context.Context, slug string) (int64, error) {
	return t.store.Count(ctx, slug)
}
