package gen

import (
	"github.com/jihwankim/repcheck/pkg/picks"
)

type editKind int

const (
	keepEdit editKind = iota
	replaceEdit
	snipEdit
)

// Edit is one instruction from an editor: keep the pick, replace its
// reply, or delete it from the stream.
type Edit struct {
	kind  editKind
	value int64
}

// Keep leaves the pick unchanged.
func Keep() Edit { return Edit{kind: keepEdit} }

// Replace substitutes the reply. Out-of-range values are clamped to the
// request's minimum when applied.
func Replace(v int64) Edit { return Edit{kind: replaceEdit, value: v} }

// Snip deletes the pick from the stream.
func Snip() Edit { return Edit{kind: snipEdit} }

// Editor decides the fate of each pick in a playout, in order.
type Editor func(index int, req picks.Request, reply int64) Edit

// KeepAll is the identity editor.
func KeepAll(int, picks.Request, int64) Edit { return Keep() }

// TrimEnd snips every pick at or past index n.
func TrimEnd(n int) Editor {
	return func(i int, _ picks.Request, _ int64) Edit {
		if i >= n {
			return Snip()
		}
		return Keep()
	}
}

// ReplaceAt replaces the reply at one index.
func ReplaceAt(at int, v int64) Editor {
	return func(i int, _ picks.Request, _ int64) Edit {
		if i == at {
			return Replace(v)
		}
		return Keep()
	}
}

// SnipRange snips picks in [start, end).
func SnipRange(start, end int) Editor {
	return func(i int, _ picks.Request, _ int64) Edit {
		if i >= start && i < end {
			return Snip()
		}
		return Keep()
	}
}

// ApplyEdits runs an editor over a playout's picks and returns the edited
// reply stream plus whether anything changed.
func ApplyEdits(p picks.Playout, ed Editor) ([]int64, bool) {
	out := make([]int64, 0, p.Len())
	changed := false
	for i := 0; i < p.Len(); i++ {
		req := p.RequestAt(i)
		reply := p.ReplyAt(i)
		switch e := ed(i, req, reply); e.kind {
		case keepEdit:
			out = append(out, reply)
		case replaceEdit:
			v := req.Clamp(e.value)
			if v != reply {
				changed = true
			}
			out = append(out, v)
		case snipEdit:
			changed = true
		}
	}
	return out, changed
}
