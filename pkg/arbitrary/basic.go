// Package arbitrary is the built-in generator catalog: scalars,
// collections and combinators, all expressed as scripts over the pick
// protocol so that search, replay and shrinking apply uniformly.
package arbitrary

import (
	"fmt"
	"sync"

	"github.com/jihwankim/repcheck/pkg/gen"
	"github.com/jihwankim/repcheck/pkg/picks"
	"github.com/jihwankim/repcheck/pkg/walk"
)

// Int generates integers in [min, max]. Wide ranges carry the biased hint
// so random search over-samples the default, min and max.
func Int(min, max int64) *gen.Script[int64] {
	req := picks.MustRequest(min, max).WithBias()
	name := fmt.Sprintf("int(%d..%d)", min, max)
	return gen.NewScript(name, func(p *gen.Pick) (int64, error) {
		return p.Int(req)
	})
}

// Boolean generates false and true, in that search order.
func Boolean() *gen.Script[bool] {
	req := picks.MustRequest(0, 1)
	return gen.NewScript("boolean", func(p *gen.Pick) (bool, error) {
		v, err := p.Int(req)
		return v == 1, err
	})
}

// Const generates a single value with no picks.
func Const[T any](name string, v T) *gen.Script[T] {
	return gen.NewScript(name, func(*gen.Pick) (T, error) {
		return v, nil
	}).WithCaching()
}

// OneOf picks among alternatives, honoring each script's weight.
func OneOf[T any](choices ...*gen.Script[T]) *gen.Script[T] {
	if len(choices) == 0 {
		panic("arbitrary: OneOf needs at least one choice")
	}
	total := int64(0)
	for _, c := range choices {
		total += int64(c.Weight())
	}
	req := picks.MustRequest(0, total-1)
	return gen.NewScript("oneOf", func(p *gen.Pick) (T, error) {
		var zero T
		v, err := p.Int(req)
		if err != nil {
			return zero, err
		}
		for _, c := range choices {
			v -= int64(c.Weight())
			if v < 0 {
				return gen.Call(p, c)
			}
		}
		return gen.Call(p, choices[len(choices)-1])
	})
}

// Map transforms a generator's output.
func Map[A, B any](s *gen.Script[A], name string, f func(A) B) *gen.Script[B] {
	return gen.NewScript(name, func(p *gen.Pick) (B, error) {
		var zero B
		a, err := gen.Call(p, s)
		if err != nil {
			return zero, err
		}
		return f(a), nil
	})
}

// Map2 combines two generators, the building block for record shapes.
func Map2[A, B, C any](a *gen.Script[A], b *gen.Script[B], name string, f func(A, B) C) *gen.Script[C] {
	return gen.NewScript(name, func(p *gen.Pick) (C, error) {
		var zero C
		av, err := gen.Call(p, a)
		if err != nil {
			return zero, err
		}
		bv, err := gen.Call(p, b)
		if err != nil {
			return zero, err
		}
		return f(av, bv), nil
	})
}

// Filter keeps only values satisfying accept. A filter that rejects
// everything eventually fails generation as too strict.
func Filter[T any](s *gen.Script[T], accept func(T) bool) *gen.Script[T] {
	return s.WithAccept(accept)
}

// FlatMap feeds a generated value into a generator-producing function.
// The function must be deterministic so replays reach the same script.
func FlatMap[A, B any](s *gen.Script[A], name string, f func(A) *gen.Script[B]) *gen.Script[B] {
	return gen.NewScript(name, func(p *gen.Pick) (B, error) {
		var zero B
		a, err := gen.Call(p, s)
		if err != nil {
			return zero, err
		}
		return gen.Call(p, f(a))
	})
}

// Alias defers a generator's construction until first use, breaking the
// definition cycle of recursive shapes. The runner's depth limit bounds
// the recursion at generation time.
func Alias[T any](name string, fill func() *gen.Script[T]) *gen.Script[T] {
	resolve := sync.OnceValue(fill)
	return gen.NewScript(name, func(p *gen.Pick) (T, error) {
		return gen.Call(p, resolve())
	})
}

// prune signals the current playout cannot produce a value.
func prune(name string) error {
	return fmt.Errorf("%q: %w", name, walk.ErrPruned)
}
