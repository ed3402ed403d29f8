// Package shrink searches for a smaller playout that still makes a failing
// property fail. Three strategies run in order — tail trimming, optional
// group removal, per-pick minimization. Tail trimming and per-pick
// minimization binary-search toward the smallest candidate they can
// defend; group removal scans the spans right to left.
package shrink

import (
	"github.com/jihwankim/repcheck/pkg/gen"
	"github.com/jihwankim/repcheck/pkg/picks"
)

// Shrink returns a generated value that still satisfies interesting (the
// "still failing" predicate) and whose playout precedes g's in (length,
// lexicographic replies) order, or g itself when no reduction holds up.
//
// Candidates are compared in canonical form: trailing minimum replies are
// dropped, since replaying a truncated sequence regenerates them as
// padding. Every accepted candidate strictly decreases the canonical
// (length, lexicographic) order, so the search terminates.
func Shrink[T any](g *gen.Generated[T], interesting func(T) bool) *gen.Generated[T] {
	cur := g
	for {
		improved := false
		if next, ok := trimTail(cur, interesting); ok {
			cur = next
			improved = true
		}
		if next, ok := removeGroups(cur, interesting); ok {
			cur = next
			improved = true
		}
		if next, ok := minimizePicks(cur, interesting); ok {
			cur = next
			improved = true
		}
		if !improved {
			return cur
		}
	}
}

// canon returns the playout's replies with trailing minimums dropped.
func canon(p picks.Playout) []int64 {
	n := p.Len()
	for n > 0 && p.ReplyAt(n-1) == p.RequestAt(n-1).Min() {
		n--
	}
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = p.ReplyAt(i)
	}
	return out
}

// precedes orders canonical reply sequences: shorter first, then
// lexicographically smaller.
func precedes(a, b []int64) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// accept rebuilds cur from the edited replies and keeps the result only
// when it is canonically smaller and still interesting.
func accept[T any](cur *gen.Generated[T], replies []int64, interesting func(T) bool) (*gen.Generated[T], bool) {
	cand := cur.Rebuild(replies)
	if cand == nil {
		return nil, false
	}
	if !precedes(canon(cand.Playout()), canon(cur.Playout())) {
		return nil, false
	}
	if !interesting(cand.Value()) {
		return nil, false
	}
	return cand, true
}

// trimTail truncates the canonical reply sequence as far as the predicate
// allows. Postcondition on success: the last canonical pick is necessary.
func trimTail[T any](cur *gen.Generated[T], interesting func(T) bool) (*gen.Generated[T], bool) {
	replies := canon(cur.Playout())
	n := len(replies)
	if n == 0 {
		return cur, false
	}
	best, ok := accept(cur, replies[:n-1], interesting)
	if !ok {
		return cur, false
	}
	// Binary-search the smallest still-failing truncation.
	lo, hi := 0, n-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cand, ok := accept(cur, replies[:mid], interesting); ok {
			best = cand
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return best, true
}

// removeGroups deletes optional groups: a sub-generator span whose
// immediately preceding pick answered 1 to a {0,1} request. The deletion
// extends left over adjacent empty options. Scans right to left and
// restarts after every success, since spans shift under edits.
func removeGroups[T any](cur *gen.Generated[T], interesting func(T) bool) (*gen.Generated[T], bool) {
	changed := false
	for {
		playout := cur.Playout()
		spans := playout.Spans()
		found := false
		for si := len(spans) - 1; si >= 0 && !found; si-- {
			s := spans[si]
			opt := s.Start - 1
			if opt < 0 || !isOptionPick(playout, opt) || playout.ReplyAt(opt) != 1 {
				continue
			}
			// Pull neighboring empty options into the deletion.
			start := opt
			for start-1 >= 0 && isOptionPick(playout, start-1) && playout.ReplyAt(start-1) == 0 {
				start--
			}
			for _, from := range []int{start, opt} {
				replies, _ := gen.ApplyEdits(playout, gen.SnipRange(from, s.End))
				if cand, ok := accept(cur, replies, interesting); ok {
					cur = cand
					changed = true
					found = true
					break
				}
				if from == opt {
					break
				}
			}
		}
		if !found {
			return cur, changed
		}
	}
}

func isOptionPick(p picks.Playout, i int) bool {
	req := p.RequestAt(i)
	return req.Min() == 0 && req.Max() == 1
}

// minimizePicks binary-searches each reply down toward its request's
// minimum.
func minimizePicks[T any](cur *gen.Generated[T], interesting func(T) bool) (*gen.Generated[T], bool) {
	changed := false
	for i := 0; i < cur.Len(); i++ {
		req := cur.Playout().RequestAt(i)
		v := cur.Playout().ReplyAt(i)
		if v <= req.Min() {
			continue
		}
		// The current reply is known interesting; find the smallest one
		// in [min, v] that still is. Rebuilds can reshape the playout, so
		// bounds are re-checked against the current value each step.
		lo, hi := req.Min(), v
		for lo < hi && i < cur.Len() {
			mid := lo + (hi-lo)/2
			replies, _ := gen.ApplyEdits(cur.Playout(), gen.ReplaceAt(i, mid))
			if cand, ok := accept(cur, replies, interesting); ok {
				cur = cand
				changed = true
				hi = mid
			} else {
				lo = mid + 1
			}
		}
	}
	return cur, changed
}
