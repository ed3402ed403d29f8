package gen

import (
	"errors"
	"reflect"

	"github.com/jihwankim/repcheck/pkg/picks"
	"github.com/jihwankim/repcheck/pkg/walk"
)

// Generated is a value along with the playout that produced it and the
// script that can reproduce it. Immutable; edits produce fresh instances.
type Generated[T any] struct {
	val     T
	playout picks.Playout
	script  *Script[T]
}

// Value returns the produced value.
func (g *Generated[T]) Value() T { return g.val }

// Playout returns the record of the picks that produced the value.
func (g *Generated[T]) Playout() picks.Playout { return g.playout }

// Script returns the generator that built the value.
func (g *Generated[T]) Script() *Script[T] { return g.script }

// Replies returns a copy of the reply sequence.
func (g *Generated[T]) Replies() []int64 { return g.playout.Replies() }

// Len returns the number of picks consumed.
func (g *Generated[T]) Len() int { return g.playout.Len() }

// Mutate rebuilds the value with the editor applied to the reply stream,
// replaying the script against the edited picks. Returns nil when the
// script can no longer produce a value from them.
func (g *Generated[T]) Mutate(ed Editor) *Generated[T] {
	edited, _ := ApplyEdits(g.playout, ed)
	return g.Rebuild(edited)
}

// Rebuild replays the script against an explicit reply sequence. Picks
// past the end of the sequence fall back to each request's minimum.
// Returns nil when the script rejects the replies.
func (g *Generated[T]) Rebuild(replies []int64) *Generated[T] {
	tracker := walk.NewPlaybackTracker(replies)
	src := walk.NewSource(tracker)
	out, err := Generate(g.script, src)
	if err != nil {
		return nil
	}
	return out
}

// Equal reports structural equality of the two values. Identity, by
// contrast, is the playout: distinct playouts may build equal values.
func (g *Generated[T]) Equal(other *Generated[T]) bool {
	if other == nil {
		return false
	}
	return reflect.DeepEqual(g.val, other.val)
}

// ErrNondeterministic is returned by CheckDeterminism when replaying a
// playout builds a different value.
var ErrNondeterministic = errors.New("gen: generator is not deterministic")

// CheckDeterminism replays the generated value's own picks and verifies
// the same value comes back.
func (g *Generated[T]) CheckDeterminism() error {
	replayed := g.Rebuild(g.Replies())
	if replayed == nil || !g.Equal(replayed) {
		return ErrNondeterministic
	}
	return nil
}
