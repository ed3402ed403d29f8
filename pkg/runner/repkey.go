package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadRepKey is returned when a rep key's text form does not match the
// "{seed}:{index}" grammar: a signed 32-bit decimal seed, a colon, and a
// non-negative decimal index.
var ErrBadRepKey = errors.New(`runner: rep key must be "{seed}:{index}"`)

// RepKey identifies one generated input within one run.
type RepKey struct {
	Seed  int32
	Index int
}

// String returns the canonical text form, e.g. "1866001691:239".
func (k RepKey) String() string {
	return fmt.Sprintf("%d:%d", k.Seed, k.Index)
}

// ParseRepKey parses the canonical text form.
func ParseRepKey(s string) (RepKey, error) {
	seedStr, idxStr, ok := strings.Cut(s, ":")
	if !ok {
		return RepKey{}, fmt.Errorf("%w: got %q", ErrBadRepKey, s)
	}
	seed, err := strconv.ParseInt(seedStr, 10, 32)
	if err != nil {
		return RepKey{}, fmt.Errorf("%w: bad seed in %q", ErrBadRepKey, s)
	}
	idx, err := strconv.ParseUint(idxStr, 10, 32)
	if err != nil {
		return RepKey{}, fmt.Errorf("%w: bad index in %q", ErrBadRepKey, s)
	}
	return RepKey{Seed: int32(seed), Index: int(idx)}, nil
}
