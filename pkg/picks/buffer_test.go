package picks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/repcheck/pkg/picks"
)

var bit = picks.MustRequest(0, 9)

func push(t *testing.T, b *picks.Buffer, replies ...int64) {
	t.Helper()
	for _, v := range replies {
		require.NoError(t, b.PushPick(bit, v))
	}
}

func TestBuffer_LogCap(t *testing.T) {
	t.Parallel()

	b := picks.NewBufferSize(2)
	push(t, b, 1, 2)
	err := b.PushPick(bit, 3)
	require.ErrorIs(t, err, picks.ErrPickLogFull)
	assert.Equal(t, 2, b.Len())
}

func TestBuffer_SpansRecorded(t *testing.T) {
	t.Parallel()

	b := picks.NewBuffer()
	push(t, b, 1)
	level := b.StartSpan()
	push(t, b, 2, 3)
	require.NoError(t, b.EndSpan(level))
	push(t, b, 4)

	p, err := b.ToPlayout()
	require.NoError(t, err)
	assert.Equal(t, []picks.Span{{Start: 1, End: 3}}, p.Spans())
	assert.Equal(t, []int64{1, 2, 3, 4}, p.Replies())
}

func TestBuffer_TrivialSpanElided(t *testing.T) {
	t.Parallel()

	// A span around a single pick leaves no mark: the rendering is the
	// same whether or not the generator opened one.
	b := picks.NewBuffer()
	push(t, b, 1)
	level := b.StartSpan()
	push(t, b, 2)
	require.NoError(t, b.EndSpan(level))

	p, err := b.ToPlayout()
	require.NoError(t, err)
	assert.Empty(t, p.Spans())
}

func TestBuffer_RedundantWrapperElided(t *testing.T) {
	t.Parallel()

	// A span wrapping exactly one inner span with identical bounds is
	// elided; the inner one survives.
	b := picks.NewBuffer()
	outer := b.StartSpan()
	inner := b.StartSpan()
	push(t, b, 1, 2)
	require.NoError(t, b.EndSpan(inner))
	require.NoError(t, b.EndSpan(outer))

	p, err := b.ToPlayout()
	require.NoError(t, err)
	assert.Equal(t, []picks.Span{{Start: 0, End: 2}}, p.Spans())
}

func TestBuffer_EndSpanKeep(t *testing.T) {
	t.Parallel()

	b := picks.NewBuffer()
	level := b.StartSpan()
	push(t, b, 5)
	require.NoError(t, b.EndSpanKeep(level))

	p, err := b.ToPlayout()
	require.NoError(t, err)
	assert.Equal(t, []picks.Span{{Start: 0, End: 1}}, p.Spans())
}

func TestBuffer_CancelSpan(t *testing.T) {
	t.Parallel()

	b := picks.NewBuffer()
	push(t, b, 1)
	level := b.StartSpan()
	push(t, b, 2, 3)
	inner := b.StartSpan()
	push(t, b, 4, 5)
	require.NoError(t, b.EndSpan(inner))
	require.NoError(t, b.CancelSpan(level))

	p, err := b.ToPlayout()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, p.Replies())
	assert.Empty(t, p.Spans())
}

func TestBuffer_SpanLevelMismatch(t *testing.T) {
	t.Parallel()

	b := picks.NewBuffer()
	level := b.StartSpan()
	b.StartSpan()
	err := b.EndSpan(level)
	require.ErrorIs(t, err, picks.ErrOpenSpan)
}

func TestBuffer_OpenSpanBlocksPlayout(t *testing.T) {
	t.Parallel()

	b := picks.NewBuffer()
	b.StartSpan()
	push(t, b, 1, 2)
	_, err := b.ToPlayout()
	require.ErrorIs(t, err, picks.ErrOpenSpan)
}

func TestBuffer_RotateLastPick(t *testing.T) {
	t.Parallel()

	b := picks.NewBuffer()
	_, ok := b.RotateLastPick()
	assert.False(t, ok)

	req := picks.MustRequest(0, 2)
	require.NoError(t, b.PushPick(req, 1))

	v, ok := b.RotateLastPick()
	require.True(t, ok)
	assert.Equal(t, int64(2), v)

	v, ok = b.RotateLastPick()
	require.True(t, ok)
	assert.Equal(t, int64(0), v, "rotation wraps from max back to min")
}
