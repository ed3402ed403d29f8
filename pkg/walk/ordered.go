package walk

import (
	"github.com/jihwankim/repcheck/pkg/picks"
)

// OrderedTracker enumerates playouts in breadth passes of roughly
// increasing complexity: pass 0 is the all-minimum playout; pass k answers
// depth k−1 with a non-minimum reply, forces every deeper pick to its
// minimum, and exhaustively revisits the shallower depths. A playout that
// never reaches depth k−1 was already produced by an earlier pass, so
// EndPlayout rejects it. The search ends after a pass that accepted
// nothing and pruned nothing.
type OrderedTracker struct {
	pass     int
	replies  []int64
	highs    []int64 // per-depth upper bound after pass narrowing
	started  bool
	accepted int
	pruned   bool
	done     bool
}

// NewOrderedTracker returns a tracker positioned before pass 0.
func NewOrderedTracker() *OrderedTracker {
	return &OrderedTracker{}
}

func (t *OrderedTracker) StartPlayout(depth int) {
	t.replies = t.replies[:depth]
	t.highs = t.highs[:depth]
}

func (t *OrderedTracker) MaybePick(req picks.Request) (int64, error) {
	depth := len(t.replies)
	lo, hi := req.Min(), req.Max()
	switch {
	case depth == t.pass-1:
		// This pass differs from the minimum here; a constant request
		// cannot differ, so the path is dead.
		if lo >= hi {
			t.pruned = true
			return 0, ErrPruned
		}
		lo++
	case depth >= t.pass:
		hi = lo
	}
	t.replies = append(t.replies, lo)
	t.highs = append(t.highs, hi)
	return lo, nil
}

func (t *OrderedTracker) EndPlayout() bool {
	if len(t.replies) >= t.pass {
		t.accepted++
		return true
	}
	return false
}

func (t *OrderedTracker) PrunePlayout(int) {
	t.pruned = true
}

func (t *OrderedTracker) NextPlayout() (int, bool) {
	if t.done {
		return 0, false
	}
	if !t.started {
		t.started = true
		return 0, true
	}
	// Advance the deepest pick that can still increase within its
	// narrowed range, discarding everything after it.
	for i := len(t.replies) - 1; i >= 0; i-- {
		if t.replies[i] < t.highs[i] {
			t.replies[i]++
			t.replies = t.replies[:i+1]
			t.highs = t.highs[:i+1]
			return i + 1, true
		}
	}
	// Pass complete. A pass that neither accepted nor pruned anything
	// proves no playout reaches the depth later passes would vary.
	if t.accepted == 0 && !t.pruned {
		t.done = true
		return 0, false
	}
	t.pass++
	t.accepted = 0
	t.pruned = false
	t.replies = t.replies[:0]
	t.highs = t.highs[:0]
	return 0, true
}

func (t *OrderedTracker) Replies() []int64 {
	out := make([]int64, len(t.replies))
	copy(out, t.replies)
	return out
}

func (t *OrderedTracker) Depth() int { return len(t.replies) }
