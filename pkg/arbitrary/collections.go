package arbitrary

import (
	"fmt"

	"github.com/jihwankim/repcheck/pkg/gen"
	"github.com/jihwankim/repcheck/pkg/picks"
)

// uniqueTries bounds duplicate re-draws per element before the playout is
// pruned and the search moves on.
const uniqueTries = 10

var contReq = picks.MustRequest(0, 1)

// ArrayOf generates slices of minLen to maxLen elements. Lengths beyond
// the minimum are encoded as continuation bits so the shrinker can delete
// elements one optional group at a time; element spans are pinned so even
// single-pick elements stay deletable.
func ArrayOf[T any](elem *gen.Script[T], minLen, maxLen int) *gen.Script[[]T] {
	if minLen < 0 || maxLen < minLen {
		panic(fmt.Sprintf("arbitrary: bad array bounds [%d, %d]", minLen, maxLen))
	}
	pinned := elem.WithSplitCalls()
	name := fmt.Sprintf("array(%s)", elem.Name())
	return gen.NewScript(name, func(p *gen.Pick) ([]T, error) {
		out := make([]T, 0, minLen)
		for i := 0; i < minLen; i++ {
			v, err := gen.Call(p, pinned)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		for len(out) < maxLen {
			cont, err := p.Int(contReq)
			if err != nil {
				return nil, err
			}
			if cont == 0 {
				break
			}
			v, err := gen.Call(p, pinned)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	})
}

// asciiChar generates printable ASCII, shrinking toward space.
func asciiChar() *gen.Script[int64] {
	return Int(32, 126)
}

// String generates printable-ASCII strings of minLen to maxLen bytes.
func String(minLen, maxLen int) *gen.Script[string] {
	chars := ArrayOf(asciiChar(), minLen, maxLen)
	return Map(chars, "string", func(cs []int64) string {
		out := make([]byte, len(cs))
		for i, c := range cs {
			out[i] = byte(c)
		}
		return string(out)
	})
}

// UniqueArray generates slices with pairwise-distinct elements. Each
// duplicate draw is retried a few times; a playout that cannot produce a
// fresh element is pruned.
func UniqueArray[T comparable](elem *gen.Script[T], minLen, maxLen int) *gen.Script[[]T] {
	if minLen < 0 || maxLen < minLen {
		panic(fmt.Sprintf("arbitrary: bad array bounds [%d, %d]", minLen, maxLen))
	}
	pinned := elem.WithSplitCalls()
	name := fmt.Sprintf("uniqueArray(%s)", elem.Name())
	return gen.NewScript(name, func(p *gen.Pick) ([]T, error) {
		seen := make(map[T]struct{}, minLen)
		out := make([]T, 0, minLen)
		draw := func() (T, error) {
			for tries := 0; tries < uniqueTries; tries++ {
				v, err := gen.Call(p, pinned)
				if err != nil {
					var zero T
					return zero, err
				}
				if _, dup := seen[v]; !dup {
					seen[v] = struct{}{}
					return v, nil
				}
			}
			var zero T
			return zero, prune(name)
		}
		for i := 0; i < minLen; i++ {
			v, err := draw()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		for len(out) < maxLen {
			cont, err := p.Int(contReq)
			if err != nil {
				return nil, err
			}
			if cont == 0 {
				break
			}
			v, err := draw()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	})
}

// Row is one table row: a key unique within its table plus a value.
type Row[K comparable, V any] struct {
	Key   K
	Value V
}

// TableOf generates tables of minRows to maxRows rows whose keys are
// pairwise distinct.
func TableOf[K comparable, V any](key *gen.Script[K], value *gen.Script[V], minRows, maxRows int) *gen.Script[[]Row[K, V]] {
	rows := UniqueArray(key, minRows, maxRows)
	pinnedValue := value.WithSplitCalls()
	name := fmt.Sprintf("table(%s, %s)", key.Name(), value.Name())
	return gen.NewScript(name, func(p *gen.Pick) ([]Row[K, V], error) {
		keys, err := gen.Call(p, rows)
		if err != nil {
			return nil, err
		}
		out := make([]Row[K, V], 0, len(keys))
		for _, k := range keys {
			v, err := gen.Call(p, pinnedValue)
			if err != nil {
				return nil, err
			}
			out = append(out, Row[K, V]{Key: k, Value: v})
		}
		return out, nil
	})
}
