// Package display derives the rendered slice of a result list that keeps
// growing while the user scrolls.
package display

import (
	"strings"
	"time"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

const (
	// PageSize is both the initial visible count and the growth step.
	PageSize = 12
	// LoadMoreDelay is how long a load-more stays in flight.
	LoadMoreDelay = 200 * time.Millisecond
	// SampleInterval is the period of the scroll-proximity sampler.
	SampleInterval = 100 * time.Millisecond
)

// State is the controller's lifecycle state.
type State int

const (
	Idle State = iota
	Loading
	Showing
	LoadingMore
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Showing:
		return "showing"
	case LoadingMore:
		return "loading-more"
	default:
		return "unknown"
	}
}

// Controller holds the display state of one search screen. It is not safe
// for concurrent use; the owning view mutates it from a single goroutine.
type Controller struct {
	state       State
	query       string
	results     []movie.Movie
	visible     int
	hasSearched bool
	seq         uint64
}

// New returns an idle controller.
func New() *Controller {
	return &Controller{}
}

// Submit starts a new search, discarding the current results and counters.
// It returns the trimmed query and a sequence number identifying this
// submission. ok is false for an empty query: the controller is then
// already Showing an empty result set and no request should be made.
func (c *Controller) Submit(query string) (trimmed string, seq uint64, ok bool) {
	c.seq++
	c.query = strings.TrimSpace(query)
	c.results = nil
	c.visible = 0
	c.hasSearched = true

	if c.query == "" {
		c.state = Showing
		return "", c.seq, false
	}
	c.state = Loading
	return c.query, c.seq, true
}

// Resolve installs the results of a search and shows the first page.
// Results are accepted even when a newer Submit happened since the request
// was issued; callers can compare Seq to detect that.
func (c *Controller) Resolve(results []movie.Movie) {
	c.results = results
	c.visible = PageSize
	c.state = Showing
}

// RequestMore moves Showing to LoadingMore. It reports false, and changes
// nothing, when a load is already in flight or nothing is being shown.
func (c *Controller) RequestMore() bool {
	if c.state != Showing || len(c.results) == 0 {
		return false
	}
	c.state = LoadingMore
	return true
}

// FinishMore completes an in-flight load-more, growing the visible count by
// one page. It is a no-op in any other state, so a late completion after a
// new Submit cannot grow the fresh result set.
func (c *Controller) FinishMore() bool {
	if c.state != LoadingMore {
		return false
	}
	c.visible += PageSize
	c.state = Showing
	return true
}

// Visible returns the slice to render.
func (c *Controller) Visible() []movie.Movie {
	return Cycle(c.results, c.visible)
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Query() string {
	return c.query
}

// Results returns the distinct results of the last resolved search.
func (c *Controller) Results() []movie.Movie {
	return c.results
}

func (c *Controller) VisibleCount() int {
	return c.visible
}

func (c *Controller) HasSearched() bool {
	return c.hasSearched
}

// Seq returns the sequence number of the latest submission.
func (c *Controller) Seq() uint64 {
	return c.seq
}

// Cycle repeats items end-to-end and truncates the result to exactly n
// elements, so element i is items[i % len(items)]. An empty items or a
// non-positive n yields an empty slice.
func Cycle[T any](items []T, n int) []T {
	if len(items) == 0 || n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	for i := range out {
		out[i] = items[i%len(items)]
	}
	return out
}
