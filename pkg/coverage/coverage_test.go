package coverage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/repcheck/pkg/coverage"
)

func TestSometimes_TalliesBothOutcomes(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	assert.True(t, tally.Sometimes("positive", true))
	assert.False(t, tally.Sometimes("positive", false))
	tally.Sometimes("positive", true)

	c, ok := tally.Counter("positive")
	require.True(t, ok)
	assert.Equal(t, 2, c.TrueCount)
	assert.Equal(t, 1, c.FalseCount)
	assert.Equal(t, 3, c.Total())
}

func TestAnalyze_ValidityRequiresBothOutcomes(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	for i := 0; i < 100; i++ {
		tally.Sometimes("nonneg", true)
		tally.Sometimes("balanced", i%2 == 0)
	}

	err := tally.Analyze(coverage.Options{Validity: true})
	require.ErrorIs(t, err, coverage.ErrSometimesAlwaysSame)
	assert.Contains(t, err.Error(), `"nonneg" never false`)
	assert.NotContains(t, err.Error(), "balanced")
}

func TestAnalyze_ValiditySkippedWhenDisabled(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	tally.Sometimes("constant", true)
	assert.NoError(t, tally.Analyze(coverage.Options{Validity: false}))
}

func TestAnalyze_LowCoverageThreshold(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	for i := 0; i < 2000; i++ {
		tally.Sometimes("rare", i < 10)    // p = 0.005
		tally.Sometimes("common", i >= 10) // p = 0.995
		tally.Sometimes("healthy", i%2 == 0)
	}

	err := tally.Analyze(coverage.Options{Thresholds: true})
	require.ErrorIs(t, err, coverage.ErrLowCoverage)
	assert.Contains(t, err.Error(), `"rare" rarely true`)
	assert.Contains(t, err.Error(), `"common" rarely false`)
	assert.NotContains(t, err.Error(), "healthy")
}

func TestAnalyze_ThresholdSkipsSmallSamples(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	for i := 0; i < 50; i++ {
		tally.Sometimes("rare", i == 0)
	}
	assert.NoError(t, tally.Analyze(coverage.Options{Thresholds: true}),
		"keys below minRepsForStats are exempt from thresholding")
}

func TestCheckOdds_MatchingExpectationPasses(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	for i := 0; i < 200; i++ {
		tally.CheckOdds("even", 0.5, i%2 == 0)
	}
	assert.NoError(t, tally.Analyze(coverage.Options{}))
}

func TestCheckOdds_WrongExpectationFails(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	for i := 0; i < 200; i++ {
		tally.CheckOdds("even", 0.9, i%2 == 0)
	}
	err := tally.Analyze(coverage.Options{})
	require.ErrorIs(t, err, coverage.ErrUnexpectedOdds)
}

func TestCheckOdds_InsufficientSamples(t *testing.T) {
	t.Parallel()

	// n·p = 0.2 < 5: the z-test cannot run. Skipped in normal mode,
	// reported when coverage analysis is strict.
	build := func() *coverage.Tally {
		tally := coverage.NewTally()
		for i := 0; i < 200; i++ {
			tally.CheckOdds("tiny", 0.001, false)
		}
		return tally
	}

	assert.NoError(t, build().Analyze(coverage.Options{}))

	err := build().Analyze(coverage.Options{StrictOdds: true})
	require.ErrorIs(t, err, coverage.ErrInsufficientSamples)
}

func TestAnalyze_CombinesFailures(t *testing.T) {
	t.Parallel()

	tally := coverage.NewTally()
	for i := 0; i < 2000; i++ {
		tally.Sometimes("constant", true)
		tally.Sometimes("rare", i == 0)
	}
	err := tally.Analyze(coverage.Options{Validity: true, Thresholds: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, coverage.ErrSometimesAlwaysSame)
	assert.ErrorIs(t, err, coverage.ErrLowCoverage)
}
