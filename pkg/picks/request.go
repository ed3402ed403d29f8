// Package picks defines the pick protocol shared by generators, trackers and
// shrinkers: ranged integer requests, the replies that answer them, and the
// playout log that records both along with nested span markers.
package picks

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a request's range is empty.
	ErrInvalidRange = errors.New("picks: invalid request range")
	// ErrInvalidDefault is returned when an explicit default lies outside
	// the request's range.
	ErrInvalidDefault = errors.New("picks: default out of range")
	// ErrPickLogFull is returned when a playout buffer hits its size cap.
	ErrPickLogFull = errors.New("picks: pick log full")
	// ErrOpenSpan is returned when a buffer is converted to a playout while
	// spans remain open, or when span levels are closed out of order.
	ErrOpenSpan = errors.New("picks: span mismatch")
)

// Request asks for one integer pick in [Min, Max]. Requests are immutable
// value objects; they are created at generator-definition time and shared.
type Request struct {
	min    int64
	max    int64
	def    int64
	biased bool
}

// NewRequest returns a request for a pick in [min, max].
// The default reply is the in-range integer closest to zero, ties positive.
func NewRequest(min, max int64) (Request, error) {
	if min > max {
		return Request{}, fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, min, max)
	}
	return Request{min: min, max: max, def: defaultFor(min, max)}, nil
}

// MustRequest is NewRequest for ranges known valid at compile time.
func MustRequest(min, max int64) Request {
	req, err := NewRequest(min, max)
	if err != nil {
		panic(err)
	}
	return req
}

// WithDefault returns a copy of the request with an explicit default reply.
func (r Request) WithDefault(def int64) (Request, error) {
	if !r.Contains(def) {
		return Request{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidDefault, def, r.min, r.max)
	}
	r.def = def
	return r, nil
}

// WithBias returns a copy of the request carrying the biased hint. Random
// pickers over-sample the default, min and max of biased wide requests.
func (r Request) WithBias() Request {
	r.biased = true
	return r
}

// Min returns the smallest acceptable reply.
func (r Request) Min() int64 { return r.min }

// Max returns the largest acceptable reply.
func (r Request) Max() int64 { return r.max }

// Default returns the request's default reply. Biased random pickers
// over-sample it and AlwaysPicker falls back to it; depth-limit narrowing
// and exhausted playback use Min instead.
func (r Request) Default() int64 { return r.def }

// Biased reports whether the request carries the biased sampling hint.
func (r Request) Biased() bool { return r.biased }

// Contains reports whether n is an acceptable reply.
func (r Request) Contains(n int64) bool { return n >= r.min && n <= r.max }

// Size returns the number of acceptable replies. A full-width int64 range
// wraps to zero; callers treat zero as "wider than any tracking threshold".
func (r Request) Size() uint64 {
	return uint64(r.max) - uint64(r.min) + 1
}

// Clamp forces n into range. Out-of-range edits are clamped to Min.
func (r Request) Clamp(n int64) int64 {
	if !r.Contains(n) {
		return r.min
	}
	return n
}

func (r Request) String() string {
	return fmt.Sprintf("[%d..%d]", r.min, r.max)
}

func defaultFor(min, max int64) int64 {
	switch {
	case min > 0:
		return min
	case max < 0:
		return max
	default:
		return 0
	}
}
