package picks

import (
	"fmt"
	"sort"
)

// DefaultMaxLog caps the number of picks one playout may record.
const DefaultMaxLog = 10000

// Span delimits a sub-tree within a pick sequence: picks [Start, End).
// Spans nest and never partially overlap.
type Span struct {
	Start int
	End   int
}

// Len returns the number of picks the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Buffer records one playout as it happens: parallel request/reply logs plus
// span markers. Append-only while recording, except for span cancellation and
// last-pick rotation.
type Buffer struct {
	reqs    []Request
	replies []int64
	spans   []Span
	open    []int // indexes into spans, innermost last
	limit   int
}

// NewBuffer returns a buffer with the default pick-log cap.
func NewBuffer() *Buffer { return NewBufferSize(DefaultMaxLog) }

// NewBufferSize returns a buffer capped at limit picks.
func NewBufferSize(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Len returns the number of picks recorded so far.
func (b *Buffer) Len() int { return len(b.replies) }

// PushPick appends one request/reply pair.
func (b *Buffer) PushPick(req Request, reply int64) error {
	if len(b.replies) >= b.limit {
		return fmt.Errorf("%w: %d picks", ErrPickLogFull, b.limit)
	}
	b.reqs = append(b.reqs, req)
	b.replies = append(b.replies, reply)
	return nil
}

// RequestAt returns the i'th recorded request.
func (b *Buffer) RequestAt(i int) Request { return b.reqs[i] }

// ReplyAt returns the i'th recorded reply.
func (b *Buffer) ReplyAt(i int) int64 { return b.replies[i] }

// Replies returns a copy of the recorded replies.
func (b *Buffer) Replies() []int64 {
	out := make([]int64, len(b.replies))
	copy(out, b.replies)
	return out
}

// Requests returns a copy of the recorded requests.
func (b *Buffer) Requests() []Request {
	out := make([]Request, len(b.reqs))
	copy(out, b.reqs)
	return out
}

// StartSpan opens a span at the current position and returns its nesting
// level. Levels are 1-based and must be closed in LIFO order.
func (b *Buffer) StartSpan() int {
	b.spans = append(b.spans, Span{Start: len(b.replies), End: -1})
	b.open = append(b.open, len(b.spans)-1)
	return len(b.open)
}

// EndSpan closes the most recently opened span, which must be at the given
// level. Trivial spans are elided: a span covering fewer than two picks, or
// one wrapping exactly one inner span with identical bounds, leaves no mark.
func (b *Buffer) EndSpan(level int) error {
	return b.endSpan(level, false)
}

// EndSpanKeep closes the span like EndSpan but always records it, even
// when trivial.
func (b *Buffer) EndSpanKeep(level int) error {
	return b.endSpan(level, true)
}

func (b *Buffer) endSpan(level int, keep bool) error {
	if len(b.open) == 0 || level != len(b.open) {
		return fmt.Errorf("%w: endSpan at level %d, %d open", ErrOpenSpan, level, len(b.open))
	}
	idx := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	sp := Span{Start: b.spans[idx].Start, End: len(b.replies)}

	elide := !keep && sp.Len() < 2
	if !elide && !keep {
		for _, inner := range b.spans[idx+1:] {
			if inner == sp {
				elide = true
				break
			}
		}
	}
	if elide {
		b.spans = append(b.spans[:idx], b.spans[idx+1:]...)
		return nil
	}
	b.spans[idx] = sp
	return nil
}

// CancelSpan discards everything recorded since the matching StartSpan:
// the picks, the span itself, and any spans opened inside it.
func (b *Buffer) CancelSpan(level int) error {
	if len(b.open) == 0 || level != len(b.open) {
		return fmt.Errorf("%w: cancelSpan at level %d, %d open", ErrOpenSpan, level, len(b.open))
	}
	idx := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	start := b.spans[idx].Start
	b.reqs = b.reqs[:start]
	b.replies = b.replies[:start]
	b.spans = b.spans[:idx]
	return nil
}

// RotateLastPick increments the last reply within its request's range,
// wrapping from max back to min, and returns the new reply. Reports false
// when the buffer is empty.
func (b *Buffer) RotateLastPick() (int64, bool) {
	i := len(b.replies) - 1
	if i < 0 {
		return 0, false
	}
	v := b.replies[i] + 1
	if v > b.reqs[i].Max() {
		v = b.reqs[i].Min()
	}
	b.replies[i] = v
	return v, true
}

// Reset clears the buffer for a fresh playout, keeping the size cap.
func (b *Buffer) Reset() {
	b.reqs = b.reqs[:0]
	b.replies = b.replies[:0]
	b.spans = b.spans[:0]
	b.open = b.open[:0]
}

// ToPlayout captures the buffer as an immutable playout.
// Fails while spans remain open.
func (b *Buffer) ToPlayout() (Playout, error) {
	if len(b.open) > 0 {
		return Playout{}, fmt.Errorf("%w: %d span(s) still open", ErrOpenSpan, len(b.open))
	}
	spans := make([]Span, len(b.spans))
	copy(spans, b.spans)
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	return Playout{
		reqs:    b.Requests(),
		replies: b.Replies(),
		spans:   spans,
	}, nil
}
