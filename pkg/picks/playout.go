package picks

import (
	"fmt"
	"strings"
)

// Playout is the immutable record of one generator invocation: parallel
// request/reply sequences plus the spans that delimit sub-generator calls.
type Playout struct {
	reqs    []Request
	replies []int64
	spans   []Span // sorted by Start ascending, outer spans first
}

// NewPlayout builds a playout directly from its parts. Replies are clamped
// into their request's range. Used by tests and by edit application; buffers
// are the normal construction path.
func NewPlayout(reqs []Request, replies []int64, spans []Span) Playout {
	if len(reqs) != len(replies) {
		panic(fmt.Sprintf("picks: %d requests but %d replies", len(reqs), len(replies)))
	}
	rs := make([]Request, len(reqs))
	copy(rs, reqs)
	vs := make([]int64, len(replies))
	for i, v := range replies {
		vs[i] = rs[i].Clamp(v)
	}
	ss := make([]Span, len(spans))
	copy(ss, spans)
	return Playout{reqs: rs, replies: vs, spans: ss}
}

// Len returns the number of picks in the playout.
func (p Playout) Len() int { return len(p.replies) }

// RequestAt returns the i'th request.
func (p Playout) RequestAt(i int) Request { return p.reqs[i] }

// ReplyAt returns the i'th reply.
func (p Playout) ReplyAt(i int) int64 { return p.replies[i] }

// Replies returns a copy of the reply sequence.
func (p Playout) Replies() []int64 {
	out := make([]int64, len(p.replies))
	copy(out, p.replies)
	return out
}

// Requests returns a copy of the request sequence.
func (p Playout) Requests() []Request {
	out := make([]Request, len(p.reqs))
	copy(out, p.reqs)
	return out
}

// Spans returns a copy of the span set, outermost-first within a position.
func (p Playout) Spans() []Span {
	out := make([]Span, len(p.spans))
	copy(out, p.spans)
	return out
}

// ReplySum returns the sum of all replies. The shrinker does not use it:
// it orders playouts by length, then lexicographically by reply.
func (p Playout) ReplySum() int64 {
	var sum int64
	for _, v := range p.replies {
		sum += v
	}
	return sum
}

func (p Playout) String() string {
	parts := make([]string, len(p.replies))
	for i, v := range p.replies {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
