package walk

import (
	"github.com/jihwankim/repcheck/pkg/picks"
)

// PlaybackTracker replays a fixed reply sequence for exactly one playout,
// answering with each request's minimum once the sequence runs out. It
// backs deterministic rebuilds: replaying a recorded playout, or replaying
// it under edits.
type PlaybackTracker struct {
	source    []int64
	replies   []int64
	exhausted bool
	started   bool
}

// NewPlaybackTracker returns a tracker that replays the given replies.
func NewPlaybackTracker(replies []int64) *PlaybackTracker {
	src := make([]int64, len(replies))
	copy(src, replies)
	return &PlaybackTracker{source: src}
}

func (t *PlaybackTracker) StartPlayout(depth int) {
	t.replies = t.replies[:depth]
}

func (t *PlaybackTracker) MaybePick(req picks.Request) (int64, error) {
	pos := len(t.replies)
	var v int64
	if pos < len(t.source) {
		v = req.Clamp(t.source[pos])
	} else {
		t.exhausted = true
		v = req.Min()
	}
	t.replies = append(t.replies, v)
	return v, nil
}

func (t *PlaybackTracker) EndPlayout() bool { return true }

func (t *PlaybackTracker) PrunePlayout(int) {}

// NextPlayout allows a single playout: playback has nothing to search.
func (t *PlaybackTracker) NextPlayout() (int, bool) {
	if t.started {
		return 0, false
	}
	t.started = true
	return 0, true
}

func (t *PlaybackTracker) Replies() []int64 {
	out := make([]int64, len(t.replies))
	copy(out, t.replies)
	return out
}

func (t *PlaybackTracker) Depth() int { return len(t.replies) }

// Exhausted reports whether the script consumed more picks than the
// recorded sequence provided.
func (t *PlaybackTracker) Exhausted() bool { return t.exhausted }
