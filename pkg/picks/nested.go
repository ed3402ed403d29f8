package picks

import (
	"fmt"
	"strings"
)

// NestedItem is one element of a nested rendering: a single reply or a
// group covering a span. Used for human-readable display and tests.
type NestedItem interface {
	nestedItem()
	String() string
}

// NestedReply is a leaf: one integer reply.
type NestedReply int64

// NestedGroup is an interior node: the items covered by one span.
type NestedGroup []NestedItem

func (NestedReply) nestedItem() {}
func (NestedGroup) nestedItem() {}

func (r NestedReply) String() string { return fmt.Sprintf("%d", int64(r)) }

func (g NestedGroup) String() string {
	parts := make([]string, len(g))
	for i, item := range g {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NestedPicks renders a playout as a tree following its span structure.
// The rendering is faithful (round-trippable via FlattenPicks) for playouts
// that contain no zero-length spans.
func NestedPicks(p Playout) NestedGroup {
	spans := p.spans
	si := 0
	pos := 0

	var build func(end int) NestedGroup
	build = func(end int) NestedGroup {
		out := NestedGroup{}
		for {
			if si < len(spans) && spans[si].Start == pos && spans[si].End <= end {
				s := spans[si]
				si++
				out = append(out, build(s.End))
				continue
			}
			if pos >= end {
				return out
			}
			out = append(out, NestedReply(p.replies[pos]))
			pos++
		}
	}
	return build(len(p.replies))
}

// FlattenPicks inverts NestedPicks, recovering the flat reply sequence.
func FlattenPicks(g NestedGroup) []int64 {
	var out []int64
	var walk func(items NestedGroup)
	walk = func(items NestedGroup) {
		for _, item := range items {
			switch v := item.(type) {
			case NestedReply:
				out = append(out, int64(v))
			case NestedGroup:
				walk(v)
			}
		}
	}
	walk(g)
	if out == nil {
		out = []int64{}
	}
	return out
}
