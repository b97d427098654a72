// Package window implements an infinite-scroll window: a growing prefix of an
// ordered list that advances one page at a time when a sentinel becomes visible.
//
// A Window is Idle or LoadingMore. A visibility signal moves an Idle window
// with hidden items to LoadingMore; after the load delay it returns to Idle
// showing one more page. Signals received while loading are ignored. Replacing
// the items resets the window to its first page and cancels any pending load.
package window

import (
	"sync"
	"time"
)

// DefaultDelay is the artificial loading delay shown before a page is revealed.
const DefaultDelay = 300 * time.Millisecond

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Sentinel is an element whose visibility the host environment can observe.
// Observe calls notify each time the sentinel becomes visible and returns a
// function that stops the observation.
type Sentinel interface {
	Observe(notify func()) (stop func())
}

type config struct {
	delay    time.Duration
	clock    Clock
	onChange func()
}

// Option configures a Window.
type Option func(*config)

// WithDelay sets the loading delay. A delay <= 0 reveals the next page immediately.
func WithDelay(d time.Duration) Option {
	return func(c *config) { c.delay = d }
}

// WithClock replaces the clock used to schedule the loading delay.
func WithClock(clk Clock) Option {
	return func(c *config) { c.clock = clk }
}

// WithOnChange registers a callback invoked after every state transition.
// It is called without the window's lock held.
func WithOnChange(f func()) Option {
	return func(c *config) { c.onChange = f }
}

// Window is safe for concurrent use.
type Window[T any] struct {
	mu       sync.Mutex
	cfg      config
	items    []T
	pageSize int
	count    int
	loading  bool
	pending  Timer
	gen      uint64
	closed   bool
}

// New returns an Idle window showing the first page of items. A pageSize
// below 1 is treated as 1.
func New[T any](items []T, pageSize int, opts ...Option) *Window[T] {
	cfg := config{delay: DefaultDelay, clock: realClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if pageSize < 1 {
		pageSize = 1
	}
	w := &Window[T]{cfg: cfg, pageSize: pageSize}
	w.reset(items)
	return w
}

// Displayed returns the visible prefix of the items. Items already shown keep
// their position as the window grows.
func (w *Window[T]) Displayed() []T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.items[:w.count:w.count]
}

// Count returns the number of visible items.
func (w *Window[T]) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Len returns the total number of items.
func (w *Window[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// PageSize returns the configured page size.
func (w *Window[T]) PageSize() int { return w.pageSize }

// HasMore reports whether items remain hidden.
func (w *Window[T]) HasMore() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count < len(w.items)
}

// Loading reports whether the window is waiting to reveal the next page.
func (w *Window[T]) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Visible signals that the sentinel became visible. It starts loading the next
// page when the window is Idle and has hidden items; otherwise it does nothing.
// It reports whether a load was started.
func (w *Window[T]) Visible() bool {
	w.mu.Lock()
	if w.closed || w.loading || w.count >= len(w.items) {
		w.mu.Unlock()
		return false
	}
	if w.cfg.delay <= 0 {
		w.advanceLocked()
		w.mu.Unlock()
		w.notify()
		return true
	}
	w.loading = true
	gen := w.gen
	w.pending = w.cfg.clock.AfterFunc(w.cfg.delay, func() { w.complete(gen) })
	w.mu.Unlock()
	w.notify()
	return true
}

// complete finishes the load started in generation gen. Fires from a
// replaced or closed window are discarded.
func (w *Window[T]) complete(gen uint64) {
	w.mu.Lock()
	if w.closed || gen != w.gen || !w.loading {
		w.mu.Unlock()
		return
	}
	w.advanceLocked()
	w.loading = false
	w.pending = nil
	w.mu.Unlock()
	w.notify()
}

func (w *Window[T]) advanceLocked() {
	w.count = min(w.count+w.pageSize, len(w.items))
}

// Replace swaps in a new item list and resets the window to its first page,
// cancelling any pending load.
func (w *Window[T]) Replace(items []T) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.reset(items)
	w.mu.Unlock()
	w.notify()
}

// Sync replaces the items only when items is a different slice from the
// current one, and reports whether a reset happened.
func (w *Window[T]) Sync(items []T) bool {
	w.mu.Lock()
	same := sameSlice(w.items, items)
	w.mu.Unlock()
	if same {
		return false
	}
	w.Replace(items)
	return true
}

func (w *Window[T]) reset(items []T) {
	w.gen++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.items = items
	w.loading = false
	w.count = min(w.pageSize, len(items))
}

// Close tears the window down. A pending load is cancelled and no further
// state changes happen.
func (w *Window[T]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.gen++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.loading = false
}

// Attach observes s and forwards its visibility signals to the window. The
// returned function detaches the sentinel.
func (w *Window[T]) Attach(s Sentinel) (detach func()) {
	return s.Observe(func() { w.Visible() })
}

func (w *Window[T]) notify() {
	if w.cfg.onChange != nil {
		w.cfg.onChange()
	}
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
