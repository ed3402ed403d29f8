// Package coverage tallies sometimes/checkOdds observations across the
// reps of one test run and checks them statistically afterwards.
package coverage

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultMinRepsForStats is the observation count below which a key is
	// exempt from low-coverage thresholding.
	DefaultMinRepsForStats = 1000
	// DefaultThreshold flags keys whose outcome is rarely true or rarely
	// false.
	DefaultThreshold = 0.05
	// zCritical is the fixed two-sided critical value for checkOdds,
	// roughly α = 0.001. Deliberately a single-test value: there is no
	// multiple-comparison correction across keys.
	zCritical = 3.29
	// minExpectedCount gates the normal approximation: both n·p and
	// n·(1−p) must reach it before a z-test is meaningful.
	minExpectedCount = 5
)

var (
	// ErrSometimesAlwaysSame means a sometimes key never saw one of its
	// outcomes.
	ErrSometimesAlwaysSame = errors.New("coverage: sometimes key has a constant outcome")
	// ErrLowCoverage means a key's outcome probability fell below the
	// rarity threshold.
	ErrLowCoverage = errors.New("coverage: outcome too rare")
	// ErrInsufficientSamples means a checkOdds key gathered too few
	// observations for its z-test.
	ErrInsufficientSamples = errors.New("coverage: not enough samples for odds check")
	// ErrUnexpectedOdds means a checkOdds z-test rejected the expected
	// probability.
	ErrUnexpectedOdds = errors.New("coverage: observed odds disagree with expectation")
)

// Counter tallies both outcomes of one sometimes key within a run.
type Counter struct {
	TrueCount  int
	FalseCount int
}

// Total returns the number of observations.
func (c Counter) Total() int { return c.TrueCount + c.FalseCount }

type oddsCheck struct {
	expected  float64
	trueCount int
	total     int
}

// Tally accumulates coverage observations for a single test run. It is
// owned by one run context and never shared across goroutines.
type Tally struct {
	counters  map[string]*Counter
	order     []string
	odds      map[string]*oddsCheck
	oddsOrder []string
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		counters: make(map[string]*Counter),
		odds:     make(map[string]*oddsCheck),
	}
}

// Sometimes records one observation for key and returns cond unchanged so
// calls can wrap conditions inline.
func (t *Tally) Sometimes(key string, cond bool) bool {
	c := t.counters[key]
	if c == nil {
		c = &Counter{}
		t.counters[key] = c
		t.order = append(t.order, key)
	}
	if cond {
		c.TrueCount++
	} else {
		c.FalseCount++
	}
	return cond
}

// CheckOdds records one observation for a key whose long-run probability
// of cond is expected to be p.
func (t *Tally) CheckOdds(key string, p float64, cond bool) {
	o := t.odds[key]
	if o == nil {
		o = &oddsCheck{expected: p}
		t.odds[key] = o
		t.oddsOrder = append(t.oddsOrder, key)
	}
	o.total++
	if cond {
		o.trueCount++
	}
}

// Counter returns the tally for one sometimes key.
func (t *Tally) Counter(key string) (Counter, bool) {
	c, ok := t.counters[key]
	if !ok {
		return Counter{}, false
	}
	return *c, true
}

// Keys returns the sometimes keys in first-seen order.
func (t *Tally) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Options select which end-of-run analyses apply.
type Options struct {
	// Validity requires every sometimes key to have seen both outcomes.
	Validity bool
	// Thresholds enables rarely-true/rarely-false analysis.
	Thresholds bool
	// StrictOdds turns insufficient checkOdds samples into failures
	// instead of skips.
	StrictOdds bool
	// MinRepsForStats overrides DefaultMinRepsForStats when positive.
	MinRepsForStats int
	// Threshold overrides DefaultThreshold when positive.
	Threshold float64
}

// Analyze checks the tally after a run and returns one error naming every
// offending key, or nil.
func (t *Tally) Analyze(opts Options) error {
	minReps := opts.MinRepsForStats
	if minReps <= 0 {
		minReps = DefaultMinRepsForStats
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var errs []error
	if opts.Validity {
		var bad []string
		for _, key := range t.order {
			c := t.counters[key]
			switch {
			case c.TrueCount == 0:
				bad = append(bad, fmt.Sprintf("%q never true", key))
			case c.FalseCount == 0:
				bad = append(bad, fmt.Sprintf("%q never false", key))
			}
		}
		if len(bad) > 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrSometimesAlwaysSame, strings.Join(bad, "; ")))
		}
	}

	if opts.Thresholds {
		var bad []string
		for _, key := range t.order {
			c := t.counters[key]
			total := c.Total()
			if total < minReps {
				continue
			}
			p := float64(c.TrueCount) / float64(total)
			switch {
			case p > 0 && p < threshold:
				bad = append(bad, fmt.Sprintf("%q rarely true (p=%.4f over %d reps)", key, p, total))
			case p < 1 && 1-p < threshold:
				bad = append(bad, fmt.Sprintf("%q rarely false (p=%.4f over %d reps)", key, p, total))
			}
		}
		if len(bad) > 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrLowCoverage, strings.Join(bad, "; ")))
		}
	}

	for _, key := range t.oddsOrder {
		o := t.odds[key]
		n := float64(o.total)
		if n*o.expected < minExpectedCount || n*(1-o.expected) < minExpectedCount {
			if opts.StrictOdds {
				errs = append(errs, fmt.Errorf(
					"%w: %q needs n·p and n·(1−p) ≥ %d, got n=%d p=%v",
					ErrInsufficientSamples, key, minExpectedCount, o.total, o.expected))
			}
			continue
		}
		z := (float64(o.trueCount) - n*o.expected) / math.Sqrt(n*o.expected*(1-o.expected))
		if math.Abs(z) > zCritical {
			errs = append(errs, fmt.Errorf(
				"%w: %q expected p=%v, observed %d/%d (z=%.2f)",
				ErrUnexpectedOdds, key, o.expected, o.trueCount, o.total, z))
		}
	}

	return errors.Join(errs...)
}
