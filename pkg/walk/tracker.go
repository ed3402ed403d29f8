// Package walk implements the search side of playout generation: a pick
// tree that forbids revisiting exhausted paths, a random tracker with
// dedup, an ordered tracker that enumerates playouts in breadth passes, a
// playback tracker for replays, and the playout source state machine that
// generators pick through.
package walk

import (
	"errors"

	"github.com/jihwankim/repcheck/pkg/picks"
)

// ErrPruned signals "abandon this playout". It is raised when a tracker
// has exhausted every continuation of the current path or a filter has
// rejected the value being built. It is recovered at the generate loop and
// never escapes a test run.
var ErrPruned = errors.New("walk: playout pruned")

// Tracker drives the choice of replies across the playouts of one search.
// A tracker keeps the reply record for the current playout so a source can
// replay its prefix when a playout restarts mid-sequence.
type Tracker interface {
	// StartPlayout begins a playout that keeps recorded picks [0, depth)
	// and answers fresh pick requests from depth on.
	StartPlayout(depth int)

	// MaybePick answers the next fresh pick, or ErrPruned when every
	// remaining continuation of the current path is exhausted.
	MaybePick(req picks.Request) (int64, error)

	// EndPlayout commits the current playout and reports whether the
	// tracker accepted it as new. Ordered trackers reject playouts that
	// do not belong to the current pass.
	EndPlayout() bool

	// PrunePlayout abandons the current playout so it is not regenerated.
	// retryDepth hints where the next playout would best restart; trackers
	// are free to ignore it.
	PrunePlayout(retryDepth int)

	// NextPlayout returns the depth the next playout starts at, or false
	// when the search is exhausted.
	NextPlayout() (int, bool)

	// Replies returns the reply record for the current playout prefix.
	Replies() []int64

	// Depth returns the number of picks currently recorded.
	Depth() int
}
