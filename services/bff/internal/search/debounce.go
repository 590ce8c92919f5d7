// Package search implements debounced, cancellable movie search for the live
// search endpoint.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/example/movie-platform/services/bff/internal/viewmodel"
)

// DefaultWindow is the quiet period after the last keystroke before a search runs.
const DefaultWindow = 300 * time.Millisecond

// Func runs one search. It must honour ctx cancellation.
type Func func(ctx context.Context, query string) ([]viewmodel.MovieCard, error)

// Result is delivered for every search that was not superseded.
type Result struct {
	Seq     uint64                `json:"seq"`
	Query   string                `json:"query"`
	Results []viewmodel.MovieCard `json:"results"`
	Err     error                 `json:"-"`
}

// Debouncer coalesces bursts of queries into one search for the last query.
// A newer query stops the pending timer and cancels the in-flight search, so
// results are delivered in submission order and never for a stale query.
// deliver is called with the Debouncer's lock held and must not call back
// into it.
type Debouncer struct {
	window  time.Duration
	search  Func
	deliver func(Result)

	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	seq      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	closed   bool
}

func NewDebouncer(ctx context.Context, window time.Duration, search Func, deliver func(Result)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	base, cancel := context.WithCancel(ctx)
	return &Debouncer{window: window, search: search, deliver: deliver, base: base, cancel: cancel}
}

// Submit schedules a search for query and returns its sequence number.
// A blank query clears results immediately without searching.
func (d *Debouncer) Submit(query string) uint64 {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0
	}
	d.seq++
	seq := d.seq
	d.stopLocked()
	if query == "" {
		d.deliver(Result{Seq: seq, Results: []viewmodel.MovieCard{}})
		d.mu.Unlock()
		return seq
	}
	d.timer = time.AfterFunc(d.window, func() { d.run(seq, query) })
	d.mu.Unlock()
	return seq
}

// Close cancels pending and in-flight work. Later submissions are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.stopLocked()
	d.mu.Unlock()
	d.cancel()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.inflight != nil {
		d.inflight()
		d.inflight = nil
	}
}

func (d *Debouncer) run(seq uint64, query string) {
	d.mu.Lock()
	if d.closed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.base)
	d.inflight = cancel
	d.timer = nil
	d.mu.Unlock()

	results, err := d.search(ctx, query)
	superseded := ctx.Err() != nil
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if superseded || d.closed || seq != d.seq {
		return
	}
	d.inflight = nil
	if results == nil {
		results = []viewmodel.MovieCard{}
	}
	d.deliver(Result{Seq: seq, Query: query, Results: results, Err: err})
}
