package picks_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/repcheck/pkg/picks"
)

func TestNewRequest_Validates(t *testing.T) {
	t.Parallel()

	_, err := picks.NewRequest(5, 4)
	require.ErrorIs(t, err, picks.ErrInvalidRange)

	req, err := picks.NewRequest(4, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), req.Min())
	assert.Equal(t, int64(4), req.Max())
}

func TestRequest_DefaultClosestToZero(t *testing.T) {
	t.Parallel()

	tests := []struct {
		min, max, want int64
	}{
		{-5, 5, 0},
		{0, 100, 0},
		{-100, 0, 0},
		{3, 9, 3},
		{-9, -3, -3},
	}
	for _, tc := range tests {
		req := picks.MustRequest(tc.min, tc.max)
		assert.Equal(t, tc.want, req.Default(), "default of [%d, %d]", tc.min, tc.max)
	}
}

func TestRequest_WithDefault(t *testing.T) {
	t.Parallel()

	req, err := picks.MustRequest(0, 10).WithDefault(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), req.Default())

	_, err = picks.MustRequest(0, 10).WithDefault(11)
	require.ErrorIs(t, err, picks.ErrInvalidDefault)
}

func TestRequest_SizeAndContains(t *testing.T) {
	t.Parallel()

	req := picks.MustRequest(-2, 2)
	assert.Equal(t, uint64(5), req.Size())
	assert.True(t, req.Contains(-2))
	assert.True(t, req.Contains(2))
	assert.False(t, req.Contains(3))

	assert.Equal(t, uint64(1), picks.MustRequest(0, 0).Size())

	// A full-width range wraps to zero, meaning "wider than tracking".
	full := picks.MustRequest(math.MinInt64, math.MaxInt64)
	assert.Equal(t, uint64(0), full.Size())
}

func TestRequest_Clamp(t *testing.T) {
	t.Parallel()

	req := picks.MustRequest(10, 20)
	assert.Equal(t, int64(15), req.Clamp(15))
	assert.Equal(t, int64(10), req.Clamp(9))
	assert.Equal(t, int64(10), req.Clamp(25))
}
