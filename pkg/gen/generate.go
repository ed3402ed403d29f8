package gen

import (
	"errors"
	"fmt"

	"github.com/jihwankim/repcheck/pkg/metrics"
	"github.com/jihwankim/repcheck/pkg/walk"
)

// DefaultMaxTries bounds how many pruned playouts one generation survives
// before the filter is declared too strict.
const DefaultMaxTries = 1000

var (
	// ErrFilterTooStrict is returned when every attempted playout was
	// pruned away by filters.
	ErrFilterTooStrict = errors.New("gen: filter too strict")
	// ErrSearchExhausted is returned when the source's tracker has no
	// playouts left. For ordered searches this is how enumeration ends.
	ErrSearchExhausted = errors.New("gen: search exhausted")
)

// Options tune one generation run.
type Options struct {
	// Limit caps pick depth; past it requests narrow to constants.
	Limit int
	// Middleware intercepts every pick request.
	Middleware Middleware
	// MaxTries overrides DefaultMaxTries when positive.
	MaxTries int
	// Metrics receives pruned-playout and filter-retry counts; nil skips
	// instrumentation.
	Metrics *metrics.Metrics
}

// Generate draws one value from the script via the source.
func Generate[T any](s *Script[T], src *walk.Source) (*Generated[T], error) {
	return GenerateWith(s, src, Options{})
}

// GenerateWith draws one value using the given options. It starts playouts
// until one survives filters and is accepted by the tracker, bounded by
// MaxTries pruned attempts.
func GenerateWith[T any](s *Script[T], src *walk.Source, opts Options) (*Generated[T], error) {
	maxTries := opts.MaxTries
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}
	tries := 0
	for {
		if !src.NextPlayout() {
			return nil, fmt.Errorf("%q: %w", s.name, ErrSearchExhausted)
		}
		p := &Pick{src: src, limit: opts.Limit, middleware: opts.Middleware}
		val, err := runScript(p, s, 0)
		if err != nil {
			if errors.Is(err, walk.ErrPruned) {
				opts.Metrics.IncPlayoutsPruned()
				if errors.Is(err, ErrFiltered) {
					opts.Metrics.IncFilterRetries()
				}
				tries++
				if tries >= maxTries {
					return nil, fmt.Errorf(
						"%w: %q didn't generate any values in %d tries",
						ErrFilterTooStrict, s.name, maxTries)
				}
				continue
			}
			return nil, err
		}
		if !src.EndPlayout() {
			// The tracker rejected the playout (already produced by an
			// earlier pass). Not a filter failure; keep enumerating.
			continue
		}
		playout, err := src.ToPlayout()
		if err != nil {
			return nil, err
		}
		return &Generated[T]{val: val, playout: playout, script: s}, nil
	}
}
