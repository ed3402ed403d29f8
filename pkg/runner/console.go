package runner

import (
	"github.com/jihwankim/repcheck/pkg/coverage"
	"github.com/jihwankim/repcheck/pkg/reporting"
)

// Console is handed to each test invocation. It routes debug output to the
// run's logger and coverage observations to the run's tally. Test-run
// local; written only by the single active rep.
type Console struct {
	log   *reporting.Logger
	tally *coverage.Tally
	key   RepKey
}

// Log writes a debug line annotated with the rep key.
func (c *Console) Log(msg string, fields ...interface{}) {
	c.log.Debug(msg, append([]interface{}{"rep", c.key.String()}, fields...)...)
}

// Sometimes records that cond held (or not) for key this rep, and returns
// cond. Every key must see both outcomes across a run.
func (c *Console) Sometimes(key string, cond bool) bool {
	return c.tally.Sometimes(key, cond)
}

// CheckOdds records an observation for a key whose long-run probability of
// cond is expected to be p. Checked with a z-test after the run.
func (c *Console) CheckOdds(key string, p float64, cond bool) {
	c.tally.CheckOdds(key, p, cond)
}

// Key returns the rep key of the current rep.
func (c *Console) Key() RepKey { return c.key }
