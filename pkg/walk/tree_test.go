package walk_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/repcheck/pkg/picks"
	"github.com/jihwankim/repcheck/pkg/walk"
)

func TestPartialTracker_NeverRepeatsAPlayout(t *testing.T) {
	t.Parallel()

	tr := walk.NewPartialTracker(picks.NewRandomPicker(1))
	src := walk.NewSource(tr)
	req := picks.MustRequest(0, 1)

	seen := map[string]bool{}
	count := 0
	for count < 10 && src.NextPlayout() {
		a, err := src.NextPick(req)
		require.NoError(t, err)
		b, err := src.NextPick(req)
		require.NoError(t, err)
		require.True(t, src.EndPlayout())

		key := fmt.Sprint(a, ",", b)
		require.False(t, seen[key], "playout %s repeated", key)
		seen[key] = true
		count++
	}
	assert.Equal(t, 4, count, "two binary picks have exactly four playouts")
	assert.Equal(t, walk.SearchDone, src.State())
}

func TestPartialTracker_ExhaustsSingleBit(t *testing.T) {
	t.Parallel()

	tr := walk.NewPartialTracker(picks.NewRandomPicker(99))
	src := walk.NewSource(tr)
	req := picks.MustRequest(0, 1)

	var got []int64
	for len(got) < 5 && src.NextPlayout() {
		v, err := src.NextPick(req)
		require.NoError(t, err)
		require.True(t, src.EndPlayout())
		got = append(got, v)
	}
	assert.ElementsMatch(t, []int64{0, 1}, got)
}

func TestPartialTracker_WideRangesAreUntracked(t *testing.T) {
	t.Parallel()

	// A range wider than the tracking threshold must not exhaust: the
	// subtree is assumed effectively infinite.
	tr := walk.NewPartialTracker(picks.NewRandomPicker(3))
	src := walk.NewSource(tr)
	req := picks.MustRequest(0, 1_000_000)

	for i := 0; i < 100; i++ {
		require.True(t, src.NextPlayout(), "untracked search should not exhaust")
		v, err := src.NextPick(req)
		require.NoError(t, err)
		require.True(t, req.Contains(v))
		require.True(t, src.EndPlayout())
	}
}

func TestPartialTracker_VariableLengthPlayouts(t *testing.T) {
	t.Parallel()

	// Script: first pick chooses a branch; branch 1 reads one more pick.
	// All three leaves (0), (1,0), (1,1) should appear exactly once.
	tr := walk.NewPartialTracker(picks.NewRandomPicker(5))
	src := walk.NewSource(tr)
	req := picks.MustRequest(0, 1)

	seen := map[string]bool{}
	count := 0
	for count < 10 && src.NextPlayout() {
		a, err := src.NextPick(req)
		require.NoError(t, err)
		key := fmt.Sprint(a)
		if a == 1 {
			b, err := src.NextPick(req)
			require.NoError(t, err)
			key = fmt.Sprint(a, ",", b)
		}
		require.True(t, src.EndPlayout())
		require.False(t, seen[key], "playout %s repeated", key)
		seen[key] = true
		count++
	}
	assert.Equal(t, 3, count)
}

func TestPartialTracker_RetryHintKeepsPrefix(t *testing.T) {
	t.Parallel()

	tr := walk.NewPartialTracker(picks.NewRandomPicker(8))
	src := walk.NewSource(tr)
	req := picks.MustRequest(0, 100)

	require.True(t, src.NextPlayout())
	first, err := src.NextPick(req)
	require.NoError(t, err)
	second, err := src.NextPick(req)
	require.NoError(t, err)

	// Abandon the playout, asking to keep the first pick.
	src.PruneCurrent(1)
	require.True(t, src.NextPlayout())

	v, err := src.NextPick(req)
	require.NoError(t, err)
	assert.Equal(t, first, v, "replayed prefix should keep the first pick")

	v, err = src.NextPick(req)
	require.NoError(t, err)
	assert.NotEqual(t, second, v, "the pruned continuation must not repeat")
	require.True(t, src.EndPlayout())
}
