package main

import (
	"fmt"

	"github.com/jihwankim/repcheck/pkg/arbitrary"
	"github.com/jihwankim/repcheck/pkg/config"
	"github.com/jihwankim/repcheck/pkg/metrics"
	"github.com/jihwankim/repcheck/pkg/reporting"
	"github.com/jihwankim/repcheck/pkg/runner"
)

// checkOpts carries the run settings shared by every self-check.
type checkOpts struct {
	reps int
	seed int32
	only string
	cfg  *config.Config
	log  *reporting.Logger
	met  *metrics.Metrics
}

// check is one named self-property the CLI can stress.
type check struct {
	name string
	desc string
	run  func(o checkOpts) error
}

// apply copies the shared settings into a typed Options value.
func apply[T any](o checkOpts) runner.Options[T] {
	return runner.Options[T]{
		Reps:    o.reps,
		Seed:    o.seed,
		Only:    o.only,
		Config:  o.cfg,
		Logger:  o.log,
		Metrics: o.met,
	}
}

// allChecks lists the built-in self-properties in display order.
func allChecks() []check {
	return []check{
		{
			name: "int-bounds",
			desc: "integers stay inside their requested range",
			run: func(o checkOpts) error {
				script := arbitrary.Int(-100, 100)
				return runner.Run(script, func(c *runner.Console, n int64) error {
					c.Sometimes("positive", n > 0)
					c.Sometimes("negative", n < 0)
					if n < -100 || n > 100 {
						return fmt.Errorf("value %d outside [-100, 100]", n)
					}
					return nil
				}, apply[int64](o))
			},
		},
		{
			name: "int-parity-odds",
			desc: "even and odd integers are equally likely",
			run: func(o checkOpts) error {
				script := arbitrary.Int(0, 9999)
				return runner.Run(script, func(c *runner.Console, n int64) error {
					c.CheckOdds("even", 0.5, n%2 == 0)
					return nil
				}, apply[int64](o))
			},
		},
		{
			name: "string-printable",
			desc: "generated strings contain only printable ASCII",
			run: func(o checkOpts) error {
				script := arbitrary.String(0, 12)
				return runner.Run(script, func(c *runner.Console, s string) error {
					c.Sometimes("empty", len(s) == 0)
					for i := 0; i < len(s); i++ {
						if s[i] < 32 || s[i] > 126 {
							return fmt.Errorf("byte %q at %d is not printable ASCII", s[i], i)
						}
					}
					return nil
				}, apply[string](o))
			},
		},
		{
			name: "unique-ints",
			desc: "unique arrays hold pairwise-distinct elements",
			run: func(o checkOpts) error {
				script := arbitrary.UniqueArray(arbitrary.Int(0, 100), 0, 8)
				return runner.Run(script, func(c *runner.Console, vs []int64) error {
					c.Sometimes("nonempty", len(vs) > 0)
					seen := make(map[int64]struct{}, len(vs))
					for _, v := range vs {
						if _, dup := seen[v]; dup {
							return fmt.Errorf("duplicate element %d", v)
						}
						seen[v] = struct{}{}
					}
					return nil
				}, apply[[]int64](o))
			},
		},
		{
			name: "table-keys",
			desc: "table rows keep their key column unique",
			run: func(o checkOpts) error {
				script := arbitrary.TableOf(arbitrary.Int(0, 50), arbitrary.String(0, 4), 0, 6)
				return runner.Run(script, func(c *runner.Console, rows []arbitrary.Row[int64, string]) error {
					c.Sometimes("multi-row", len(rows) > 1)
					seen := make(map[int64]struct{}, len(rows))
					for _, row := range rows {
						if _, dup := seen[row.Key]; dup {
							return fmt.Errorf("duplicate key %d", row.Key)
						}
						seen[row.Key] = struct{}{}
					}
					return nil
				}, apply[[]arbitrary.Row[int64, string]](o))
			},
		},
	}
}

func findCheck(name string) (check, bool) {
	for _, c := range allChecks() {
		if c.name == name {
			return c, true
		}
	}
	return check{}, false
}
