// Package runner implements the reproducible test loop: an ordered
// enumeration pass followed by a seeded random pass, rep keys for replay,
// shrinking of failures, and end-of-run coverage analysis.
package runner

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jihwankim/repcheck/pkg/config"
	"github.com/jihwankim/repcheck/pkg/coverage"
	"github.com/jihwankim/repcheck/pkg/gen"
	"github.com/jihwankim/repcheck/pkg/metrics"
	"github.com/jihwankim/repcheck/pkg/picks"
	"github.com/jihwankim/repcheck/pkg/reporting"
	"github.com/jihwankim/repcheck/pkg/shrink"
	"github.com/jihwankim/repcheck/pkg/walk"
)

// ErrOnlySet is returned after reproducing a single rep via the Only
// option, so a pinned rep key cannot silently survive into CI.
var ErrOnlySet = errors.New("runner: only option is set")

// Test is a property over T. Returning an error (or panicking) fails the
// rep; the runner then shrinks the input and reports the smallest failing
// value it can find.
type Test[T any] func(*Console, T) error

// Options tune one Run call. The zero value is usable.
type Options[T any] struct {
	// Reps is the baseline rep count before the REPS multiplier.
	Reps int
	// Seed fixes the random pass; 0 derives one from the clock.
	Seed int32
	// Only, when set to a "{seed}:{index}" key, skips ahead to exactly
	// that rep, runs it once, and fails the run.
	Only string
	// Examples run before the generated stream, occupying the first
	// rep indexes.
	Examples []T
	// DepthLimit bounds recursive generators; 0 means unlimited.
	DepthLimit int
	// MaxTries bounds pruned playouts per generated value.
	MaxTries int
	// Config supplies process configuration; nil reads the environment.
	Config *config.Config
	// Logger receives run progress; nil discards it.
	Logger *reporting.Logger
	// Metrics receives run counters; nil skips instrumentation.
	Metrics *metrics.Metrics
}

// RepError is a test failure annotated with the rep key that reproduces
// it and the (shrunk) failing value.
type RepError struct {
	Key   RepKey
	Value interface{}
	Err   error
}

func (e *RepError) Error() string {
	return fmt.Sprintf("rep %s failed with value %v: %v (rerun with only=%q)",
		e.Key, e.Value, e.Err, e.Key.String())
}

func (e *RepError) Unwrap() error { return e.Err }

// Run draws values from script and checks test against each. The first
// failure is shrunk and returned as a *RepError; a clean run ends with
// coverage analysis.
func Run[T any](script *gen.Script[T], test Test[T], opts Options[T]) error {
	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.FromEnv()
		if err != nil {
			return err
		}
	}
	log := opts.Logger
	if log == nil {
		log = reporting.Nop()
	}

	mult := cfg.Coverage.Multiplier
	baseReps := opts.Reps
	if baseReps <= 0 {
		baseReps = cfg.Runner.Reps
	}
	if baseReps <= 0 {
		baseReps = 1000
	}
	reps := int(float64(baseReps) * mult)

	seed := opts.Seed
	if seed == 0 {
		seed = int32(time.Now().UnixNano()) ^ int32(rand.Uint32())
		if seed == 0 {
			seed = 1
		}
	}
	only := -1
	if opts.Only != "" {
		key, err := ParseRepKey(opts.Only)
		if err != nil {
			return err
		}
		seed = key.Seed
		only = key.Index
	}

	maxTries := opts.MaxTries
	if maxTries <= 0 {
		maxTries = cfg.Runner.MaxTries
	}
	maxPicks := cfg.Runner.MaxPicks
	if maxPicks <= 0 {
		maxPicks = picks.DefaultMaxLog
	}
	depthLimit := opts.DepthLimit
	if depthLimit <= 0 {
		depthLimit = cfg.Runner.DepthLimit
	}

	r := &run[T]{
		script: script,
		test:   test,
		log:    log,
		tally:  coverage.NewTally(),
		met:    opts.Metrics,
		genOpts: gen.Options{
			Limit:    depthLimit,
			MaxTries: maxTries,
			Metrics:  opts.Metrics,
		},
		maxPicks: maxPicks,
		seed:     seed,
		reps:     reps,
		only:     only,
	}

	if err := r.execute(opts.Examples); err != nil {
		return err
	}
	if only >= 0 {
		if !r.onlyRan {
			return fmt.Errorf("%w: rep %q not reached; the stream ended at index %d",
				ErrOnlySet, opts.Only, r.index)
		}
		return fmt.Errorf("%w: %q; unset it to run the full stream", ErrOnlySet, opts.Only)
	}
	return r.tally.Analyze(coverage.Options{
		Validity:        mult >= 1,
		Thresholds:      mult > 1,
		StrictOdds:      mult > 1,
		MinRepsForStats: cfg.Coverage.MinRepsForStats,
		Threshold:       cfg.Coverage.Threshold,
	})
}

type run[T any] struct {
	script   *gen.Script[T]
	test     Test[T]
	log      *reporting.Logger
	tally    *coverage.Tally
	met      *metrics.Metrics
	genOpts  gen.Options
	maxPicks int
	seed     int32
	reps     int
	only     int // -1 when disabled
	index    int

	onlyRan            bool
	checkedDeterminism bool
}

// budget returns the index the rep stream stops at.
func (r *run[T]) budget() int {
	if r.only >= 0 {
		return r.only + 1
	}
	return r.reps
}

// execute walks the rep stream: explicit examples, then the ordered
// enumeration, then seeded random reps. Reps share one index sequence so
// a rep key pins the same input on every run.
func (r *run[T]) execute(examples []T) error {
	for _, v := range examples {
		if r.index >= r.budget() {
			return nil
		}
		if err := r.runRep(v, nil); err != nil {
			return err
		}
	}

	ordered := walk.NewSourceSize(walk.NewOrderedTracker(), r.maxPicks)
	if err := r.pass(ordered); err != nil {
		return err
	}

	random := walk.NewSourceSize(
		walk.NewPartialTracker(picks.NewRandomPicker(int64(r.seed))), r.maxPicks)
	return r.pass(random)
}

func (r *run[T]) pass(src *walk.Source) error {
	for r.index < r.budget() {
		g, err := gen.GenerateWith(r.script, src, r.genOpts)
		if err != nil {
			if errors.Is(err, gen.ErrSearchExhausted) {
				return nil
			}
			return fmt.Errorf("rep %s: %w", RepKey{Seed: r.seed, Index: r.index}, err)
		}
		if err := r.runRep(g.Value(), g); err != nil {
			return err
		}
	}
	return nil
}

func (r *run[T]) runRep(val T, g *gen.Generated[T]) error {
	key := RepKey{Seed: r.seed, Index: r.index}
	r.index++
	if r.only >= 0 {
		if key.Index != r.only {
			// Reproduction mode: generate to keep the stream aligned,
			// but only test the pinned rep.
			return nil
		}
		r.onlyRan = true
	}
	r.met.IncReps()

	console := &Console{log: r.log, tally: r.tally, key: key}
	err := safeCall(r.test, console, val)
	if err == nil {
		if g != nil && !r.checkedDeterminism {
			r.checkedDeterminism = true
			if derr := g.CheckDeterminism(); derr != nil {
				return &RepError{Key: key, Value: val, Err: derr}
			}
		}
		return nil
	}

	r.met.IncRepFailures()
	if g == nil {
		r.log.Error("example failed", "rep", key.String(), "error", err.Error())
		return &RepError{Key: key, Value: val, Err: err}
	}
	if derr := g.CheckDeterminism(); derr != nil {
		return &RepError{Key: key, Value: val, Err: derr}
	}

	r.met.IncShrinks()
	r.log.Info("test failed, shrinking", "rep", key.String())
	shrunk := shrink.Shrink(g, func(v T) bool {
		return r.quietCall(v) != nil
	})
	finalErr := err
	if serr := r.quietCall(shrunk.Value()); serr != nil {
		finalErr = serr
	}
	r.log.Error("test failed",
		"rep", key.String(),
		"value", fmt.Sprintf("%v", shrunk.Value()),
		"error", finalErr.Error())
	return &RepError{Key: key, Value: shrunk.Value(), Err: finalErr}
}

// quietCall reruns the test for shrinking without polluting the run's
// coverage tally or log.
func (r *run[T]) quietCall(v T) error {
	c := &Console{log: reporting.Nop(), tally: coverage.NewTally()}
	return safeCall(r.test, c, v)
}

// safeCall converts a panicking test into a failing one.
func safeCall[T any](test Test[T], c *Console, v T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("runner: test panicked: %v", rec)
		}
	}()
	return test(c, v)
}
