package picks

import "math/rand/v2"

// Picker answers pick requests with replies in range.
type Picker interface {
	Pick(req Request) int64
}

// oddsOfEdgeCase is the denominator for each special value a biased random
// picker over-samples: default, min and max each come up with probability
// of roughly one in twenty.
const oddsOfEdgeCase = 20

// RandomPicker picks uniformly within each request's range, except for
// biased wide requests where the default, min and max are over-sampled.
// The same seed yields the same reply stream on every run.
type RandomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker returns a seeded random picker.
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(newXoroshiro(seed))}
}

func (p *RandomPicker) Pick(req Request) int64 {
	if req.Min() == req.Max() {
		return req.Min()
	}
	if req.Biased() && (req.Size() == 0 || req.Size() >= 10) {
		switch p.rng.IntN(oddsOfEdgeCase) {
		case 0:
			return req.Default()
		case 1:
			return req.Min()
		case 2:
			return req.Max()
		}
	}
	return p.uniform(req)
}

func (p *RandomPicker) uniform(req Request) int64 {
	size := req.Size()
	if size == 0 {
		// Full-width range: every int64 is acceptable.
		return int64(p.rng.Uint64())
	}
	return int64(uint64(req.Min()) + p.rng.Uint64N(size))
}

// MinPicker always answers with the request's minimum.
type MinPicker struct{}

func (MinPicker) Pick(req Request) int64 { return req.Min() }

// AlwaysPicker answers every request with the same reply, falling back to
// the request's default when the reply is out of range.
type AlwaysPicker struct {
	Reply int64
}

func (p AlwaysPicker) Pick(req Request) int64 {
	if req.Contains(p.Reply) {
		return p.Reply
	}
	return req.Default()
}

// PlaybackPicker serves a fixed reply sequence. Once the sequence runs out
// it answers with each request's minimum and marks itself exhausted;
// callers that require an exact replay check Exhausted afterwards.
type PlaybackPicker struct {
	replies   []int64
	pos       int
	exhausted bool
}

// NewPlaybackPicker returns a picker that replays the given replies.
func NewPlaybackPicker(replies []int64) *PlaybackPicker {
	return &PlaybackPicker{replies: replies}
}

func (p *PlaybackPicker) Pick(req Request) int64 {
	if p.pos >= len(p.replies) {
		p.exhausted = true
		return req.Min()
	}
	v := req.Clamp(p.replies[p.pos])
	p.pos++
	return v
}

// Exhausted reports whether any pick was requested past the end of the
// recorded sequence.
func (p *PlaybackPicker) Exhausted() bool { return p.exhausted }
