package walk

import (
	"errors"
	"fmt"

	"github.com/jihwankim/repcheck/pkg/picks"
)

// ErrNotPicking is returned when a pick is requested outside a playout.
var ErrNotPicking = errors.New("walk: source is not inside a playout")

// State is the playout source's position in its lifecycle.
type State int

const (
	// Ready means between playouts.
	Ready State = iota
	// Picking means inside a playout.
	Picking
	// SearchDone means the tracker has exhausted the search.
	SearchDone
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Picking:
		return "picking"
	case SearchDone:
		return "searchDone"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Source is the three-state machine generators pick through. It threads
// fresh picks to its tracker while recording every pick, replayed or
// fresh, in a playout buffer whose spans mirror generator call structure.
type Source struct {
	tracker Tracker
	state   State
	buf     *picks.Buffer
	replay  []int64
	depth   int
}

// NewSource returns a source over the tracker with the default pick cap.
func NewSource(t Tracker) *Source {
	return NewSourceSize(t, picks.DefaultMaxLog)
}

// NewSourceSize returns a source whose playouts are capped at limit picks.
func NewSourceSize(t Tracker, limit int) *Source {
	return &Source{tracker: t, buf: picks.NewBufferSize(limit)}
}

// State returns the source's lifecycle state.
func (s *Source) State() State { return s.state }

// Depth returns the number of picks recorded for the current playout.
func (s *Source) Depth() int { return s.depth }

// StartAt begins or restarts a playout at depth; 0 means fresh. Picks
// below depth are replayed from the tracker's record as the script re-runs.
// Reports false when the depth is beyond the current record or the search
// is done.
func (s *Source) StartAt(depth int) bool {
	if s.state == SearchDone {
		return false
	}
	if depth > s.tracker.Depth() {
		return false
	}
	s.tracker.StartPlayout(depth)
	s.replay = append(s.replay[:0], s.tracker.Replies()...)
	s.buf.Reset()
	s.depth = 0
	s.state = Picking
	return true
}

// NextPick answers one pick request, advancing depth. Returns ErrPruned
// when the tracker filters out this path, which implicitly ends the
// playout.
func (s *Source) NextPick(req picks.Request) (int64, error) {
	if s.state != Picking {
		return 0, fmt.Errorf("%w: state %s", ErrNotPicking, s.state)
	}
	var v int64
	if s.depth < len(s.replay) {
		v = req.Clamp(s.replay[s.depth])
	} else {
		var err error
		v, err = s.tracker.MaybePick(req)
		if err != nil {
			s.state = Ready
			return 0, err
		}
	}
	if err := s.buf.PushPick(req, v); err != nil {
		return 0, err
	}
	s.depth++
	return v, nil
}

// EndPlayout commits the playout and reports whether the tracker accepted
// it.
func (s *Source) EndPlayout() bool {
	if s.state != Picking {
		return false
	}
	s.state = Ready
	return s.tracker.EndPlayout()
}

// PruneCurrent abandons the playout in progress, recording retryDepth as
// the preferred restart point for trackers that honor it.
func (s *Source) PruneCurrent(retryDepth int) {
	if s.state != Picking {
		return
	}
	s.tracker.PrunePlayout(retryDepth)
	s.state = Ready
}

// NextPlayout prepares the next playout, restarting at whatever depth the
// tracker chooses. Reports false when the search is exhausted.
func (s *Source) NextPlayout() bool {
	if s.state == SearchDone {
		return false
	}
	if s.state == Picking {
		s.PruneCurrent(0)
	}
	d, ok := s.tracker.NextPlayout()
	if !ok {
		s.state = SearchDone
		return false
	}
	return s.StartAt(d)
}

// StartSpan opens a span in the playout record.
func (s *Source) StartSpan() int { return s.buf.StartSpan() }

// EndSpan closes the span at the given level.
func (s *Source) EndSpan(level int) error { return s.buf.EndSpan(level) }

// EndSpanKeep closes the span at the given level without trivial-span
// elision.
func (s *Source) EndSpanKeep(level int) error { return s.buf.EndSpanKeep(level) }

// CancelSpan discards the span at the given level along with every pick
// recorded inside it, rolling depth back to the span's start.
func (s *Source) CancelSpan(level int) error {
	if err := s.buf.CancelSpan(level); err != nil {
		return err
	}
	s.depth = s.buf.Len()
	return nil
}

// Requests returns the requests recorded for the current playout.
func (s *Source) Requests() []picks.Request { return s.buf.Requests() }

// Replies returns the replies recorded for the current playout.
func (s *Source) Replies() []int64 { return s.buf.Replies() }

// ToPlayout captures the current playout record.
func (s *Source) ToPlayout() (picks.Playout, error) { return s.buf.ToPlayout() }
