package tui

import (
	"math"
	"time"

	"github.com/eringen/inkblog/window"
)

// loopClock schedules window timers on the bubbletea event loop instead of
// on their own goroutines. AfterFunc only records the callback; the model
// turns it into a tea.Tick and fires it when the tick message arrives.
type loopClock struct {
	seq     uint64
	pending *loopTimer
	fresh   bool
}

type loopTimer struct {
	seq     uint64
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *loopTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *loopClock) AfterFunc(d time.Duration, f func()) window.Timer {
	c.seq++
	c.pending = &loopTimer{seq: c.seq, delay: d, fn: f}
	c.fresh = true
	return c.pending
}

// scheduled returns the timer created since the last call, if any.
func (c *loopClock) scheduled() (*loopTimer, bool) {
	if !c.fresh || c.pending == nil {
		return nil, false
	}
	c.fresh = false
	return c.pending, true
}

// fire runs the timer with sequence number seq unless it was stopped or
// superseded.
func (c *loopClock) fire(seq uint64) bool {
	t := c.pending
	if t == nil || t.seq != seq || t.stopped {
		return false
	}
	c.pending = nil
	t.stopped = true
	t.fn()
	return true
}

// cursorSentinel is the terminal stand-in for the scroll sentinel: it counts
// as visible once the cursor enters the last tenth of the displayed rows.
type cursorSentinel struct {
	notify func()
}

func (s *cursorSentinel) Observe(notify func()) func() {
	s.notify = notify
	return func() { s.notify = nil }
}

// check signals visibility when cursor lies in the trailing region of
// displayed rows.
func (s *cursorSentinel) check(cursor, displayed int) {
	if s.notify == nil || displayed == 0 {
		return
	}
	if cursor >= displayed-tailRows(displayed) {
		s.notify()
	}
}

// tailRows is the size of the trailing region that reveals the sentinel.
func tailRows(displayed int) int {
	return max(1, int(math.Ceil(float64(displayed)*0.1)))
}
