package gen

import (
	"fmt"

	"github.com/jihwankim/repcheck/pkg/picks"
	"github.com/jihwankim/repcheck/pkg/walk"
)

// Middleware may substitute a narrower request before a pick is delegated
// to the source. It is installed only through Options.Middleware; the
// shrinker and the random search run without one.
type Middleware func(req picks.Request, depth int) picks.Request

// Pick is the pick context handed to scripts. It threads pick requests
// through a playout source while the source records them, and runs
// sub-scripts with their picks grouped into spans.
type Pick struct {
	src        *walk.Source
	limit      int // 0 means no depth limit
	middleware Middleware
}

// Int answers a pick request. Past the depth limit the request is narrowed
// to a constant so recursion bottoms out at minimal values.
func (p *Pick) Int(req picks.Request) (int64, error) {
	if p.middleware != nil {
		req = p.middleware(req, p.src.Depth())
	}
	if p.limit > 0 && p.src.Depth() >= p.limit {
		req = picks.MustRequest(req.Min(), req.Min())
	}
	return p.src.NextPick(req)
}

// IntIn is shorthand for a pick in [min, max].
func (p *Pick) IntIn(min, max int64) (int64, error) {
	req, err := picks.NewRequest(min, max)
	if err != nil {
		return 0, err
	}
	return p.Int(req)
}

// Depth returns the number of picks consumed so far.
func (p *Pick) Depth() int { return p.src.Depth() }

// Call runs a sub-script with its picks recorded as a span, so the
// sub-value can later be edited independently. A rejected value prunes the
// playout; the generate loop retries it.
func Call[T any](p *Pick, s *Script[T]) (T, error) {
	var zero T
	startDepth := p.src.Depth()
	level := p.src.StartSpan()
	val, err := runScript(p, s, startDepth)
	if err != nil {
		return zero, err
	}
	if s.splitCalls {
		err = p.src.EndSpanKeep(level)
	} else {
		err = p.src.EndSpan(level)
	}
	if err != nil {
		return zero, err
	}
	return val, nil
}

// ErrFiltered marks a playout pruned by an accept filter rather than the
// tracker. It unwraps to walk.ErrPruned, so the generate loop's retry
// handling applies either way.
var ErrFiltered = fmt.Errorf("gen: value filtered out: %w", walk.ErrPruned)

// runScript executes the build function and applies the accept filter.
func runScript[T any](p *Pick, s *Script[T], startDepth int) (T, error) {
	var zero T
	val, err := s.build(p)
	if err != nil {
		return zero, err
	}
	if s.accept != nil && !s.accept(val) {
		p.src.PruneCurrent(startDepth)
		return zero, fmt.Errorf("%q: %w", s.name, ErrFiltered)
	}
	return val, nil
}
