package runner_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/repcheck/pkg/arbitrary"
	"github.com/jihwankim/repcheck/pkg/config"
	"github.com/jihwankim/repcheck/pkg/coverage"
	"github.com/jihwankim/repcheck/pkg/gen"
	"github.com/jihwankim/repcheck/pkg/picks"
	"github.com/jihwankim/repcheck/pkg/runner"
)

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func TestRun_ShrinksFailureAndReportsRepKey(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 100)
	err := runner.Run(script, func(_ *runner.Console, n int64) error {
		if n >= 42 {
			return fmt.Errorf("%d is too big", n)
		}
		return nil
	}, runner.Options[int64]{Seed: 1866001691, Reps: 200, Config: testConfig()})

	var repErr *runner.RepError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, int64(42), repErr.Value, "the failure should shrink to the boundary")
	assert.Equal(t, int32(1866001691), repErr.Key.Seed)
	assert.Contains(t, err.Error(), "1866001691:")
}

func TestRun_PassingPropertyIsClean(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 100)
	err := runner.Run(script, func(_ *runner.Console, n int64) error {
		if n < 0 || n > 100 {
			return fmt.Errorf("out of range: %d", n)
		}
		return nil
	}, runner.Options[int64]{Seed: 5, Reps: 100, Config: testConfig()})
	require.NoError(t, err)
}

func TestRun_RepKeysFormDuplicateFreePrefix(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 3)
	var keys []runner.RepKey
	err := runner.Run(script, func(c *runner.Console, _ int64) error {
		keys = append(keys, c.Key())
		return nil
	}, runner.Options[int64]{Seed: 5, Reps: 50, Config: testConfig()})
	require.NoError(t, err)

	require.NotEmpty(t, keys)
	for i, k := range keys {
		assert.Equal(t, i, k.Index, "indexes must be a gapless prefix")
		assert.Equal(t, int32(5), k.Seed)
	}
}

func TestRun_ExamplesRunFirst(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 100)
	var got []int64
	err := runner.Run(script, func(_ *runner.Console, n int64) error {
		got = append(got, n)
		return nil
	}, runner.Options[int64]{
		Seed:     9,
		Reps:     10,
		Examples: []int64{77, 88},
		Config:   testConfig(),
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, []int64{77, 88}, got[:2])
}

func TestRun_FailingExampleIsNotShrunk(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 100)
	err := runner.Run(script, func(_ *runner.Console, n int64) error {
		if n == 88 {
			return fmt.Errorf("boom")
		}
		return nil
	}, runner.Options[int64]{
		Seed:     9,
		Reps:     10,
		Examples: []int64{88},
		Config:   testConfig(),
	})

	var repErr *runner.RepError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, int64(88), repErr.Value)
	assert.Equal(t, 0, repErr.Key.Index)
}

func TestRun_OnlyReproducesWithoutPriorReps(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 100)
	calls := 0
	err := runner.Run(script, func(_ *runner.Console, n int64) error {
		calls++
		return nil
	}, runner.Options[int64]{Only: "7:5", Config: testConfig()})

	require.ErrorIs(t, err, runner.ErrOnlySet,
		"a passing only-rep still fails the run")
	assert.Equal(t, 1, calls, "only the pinned rep runs")
}

func TestRun_OnlyReproducesAFailure(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 100)
	failing := func(_ *runner.Console, n int64) error {
		if n >= 42 {
			return fmt.Errorf("%d is too big", n)
		}
		return nil
	}

	err := runner.Run(script, failing,
		runner.Options[int64]{Seed: 11, Reps: 200, Config: testConfig()})
	var repErr *runner.RepError
	require.ErrorAs(t, err, &repErr)

	err = runner.Run(script, failing,
		runner.Options[int64]{Only: repErr.Key.String(), Config: testConfig()})
	var replayed *runner.RepError
	require.ErrorAs(t, err, &replayed)
	assert.Equal(t, repErr.Key, replayed.Key)
	assert.Equal(t, repErr.Value, replayed.Value)
}

func TestRun_PanickingTestFails(t *testing.T) {
	t.Parallel()

	script := arbitrary.Int(0, 10)
	err := runner.Run(script, func(_ *runner.Console, n int64) error {
		if n > 3 {
			panic("unexpected value")
		}
		return nil
	}, runner.Options[int64]{Seed: 2, Reps: 50, Config: testConfig()})

	var repErr *runner.RepError
	require.ErrorAs(t, err, &repErr)
	assert.Contains(t, repErr.Err.Error(), "panicked")
}

func TestRun_DetectsNondeterministicGenerator(t *testing.T) {
	t.Parallel()

	calls := int64(0)
	flaky := gen.NewScript("flaky", func(p *gen.Pick) (int64, error) {
		if _, err := p.Int(picks.MustRequest(0, 9)); err != nil {
			return 0, err
		}
		calls++
		return calls, nil
	})

	err := runner.Run(flaky, func(_ *runner.Console, _ int64) error {
		return nil
	}, runner.Options[int64]{Seed: 3, Reps: 10, Config: testConfig()})
	require.ErrorIs(t, err, gen.ErrNondeterministic)
}

func TestRun_FilterTooStrictSurfaces(t *testing.T) {
	t.Parallel()

	script := arbitrary.Filter(arbitrary.Int(0, 100), func(int64) bool { return false })
	err := runner.Run(script, func(_ *runner.Console, _ int64) error {
		return nil
	}, runner.Options[int64]{Seed: 4, Reps: 10, MaxTries: 20, Config: testConfig()})
	require.ErrorIs(t, err, gen.ErrFilterTooStrict)
}

func TestRun_SometimesValidity(t *testing.T) {
	t.Parallel()

	err := runner.Run(arbitrary.Int(-100, 100), func(c *runner.Console, n int64) error {
		c.Sometimes("positive", n > 0)
		return nil
	}, runner.Options[int64]{Seed: 6, Reps: 1000, Config: testConfig()})
	require.NoError(t, err, "a generator spanning zero sees both outcomes")

	err = runner.Run(arbitrary.Int(0, 100), func(c *runner.Console, n int64) error {
		c.Sometimes("nonneg", n >= 0)
		return nil
	}, runner.Options[int64]{Seed: 6, Reps: 1000, Config: testConfig()})
	require.ErrorIs(t, err, coverage.ErrSometimesAlwaysSame)
	assert.Contains(t, err.Error(), "never false")
}

func TestRun_CheckOddsScenarios(t *testing.T) {
	t.Parallel()

	run := func(expected float64) error {
		return runner.Run(arbitrary.Int(0, 9999), func(c *runner.Console, n int64) error {
			c.CheckOdds("even", expected, n%2 == 0)
			return nil
		}, runner.Options[int64]{Seed: 8, Reps: 200, Config: testConfig()})
	}

	assert.NoError(t, run(0.5))
	assert.ErrorIs(t, run(0.9), coverage.ErrUnexpectedOdds)
	assert.NoError(t, run(0.001), "insufficient samples are skipped in normal mode")
}

func TestRun_MultiplierBelowOneSkipsValidity(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Coverage.Multiplier = 0.5
	err := runner.Run(arbitrary.Int(0, 100), func(c *runner.Console, _ int64) error {
		c.Sometimes("constant", true)
		return nil
	}, runner.Options[int64]{Seed: 10, Reps: 100, Config: cfg})
	require.NoError(t, err)
}

func TestRun_MultiplierAboveOneEnablesThresholds(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Coverage.Multiplier = 2
	err := runner.Run(arbitrary.Int(0, 100000), func(c *runner.Console, n int64) error {
		c.Sometimes("tiny", n < 3)
		return nil
	}, runner.Options[int64]{Seed: 12, Reps: 600, Config: cfg})
	require.ErrorIs(t, err, coverage.ErrLowCoverage)
}

func TestRun_ZeroMultiplierSkipsRandomReps(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Coverage.Multiplier = 0
	calls := 0
	err := runner.Run(arbitrary.Int(0, 100), func(_ *runner.Console, _ int64) error {
		calls++
		return nil
	}, runner.Options[int64]{Seed: 13, Reps: 100, Config: cfg})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestRun_OnlyBeyondStreamReportsNotReached(t *testing.T) {
	t.Parallel()

	// Int(0, 3) has eight distinct playouts across both passes.
	err := runner.Run(arbitrary.Int(0, 3), func(_ *runner.Console, _ int64) error {
		return nil
	}, runner.Options[int64]{Only: "5:9999", Config: testConfig()})
	require.ErrorIs(t, err, runner.ErrOnlySet)
	assert.Contains(t, err.Error(), "not reached")
}

func TestRun_BadOnlyKeyFails(t *testing.T) {
	t.Parallel()

	err := runner.Run(arbitrary.Int(0, 100), func(_ *runner.Console, _ int64) error {
		return nil
	}, runner.Options[int64]{Only: "not-a-key", Config: testConfig()})
	require.ErrorIs(t, err, runner.ErrBadRepKey)
}
