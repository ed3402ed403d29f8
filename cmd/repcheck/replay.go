package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jihwankim/repcheck/pkg/config"
	"github.com/jihwankim/repcheck/pkg/reporting"
	"github.com/jihwankim/repcheck/pkg/runner"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Args:  cobra.NoArgs,
	Short: "Reproduce a single rep of one check by its rep key",
	Long: `Replay skips ahead in a check's rep stream to exactly the rep named by
--key and runs it once, without executing any prior reps. Use the
"{seed}:{index}" key printed by a failing stress run.

Examples:
  repcheck replay --check int-bounds --key 1866001691:239`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().String("check", "", "check name (required)")
	replayCmd.Flags().String("key", "", `rep key "{seed}:{index}" (required)`)
	_ = replayCmd.MarkFlagRequired("check")
	_ = replayCmd.MarkFlagRequired("key")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	checkName, _ := cmd.Flags().GetString("check")
	key, _ := cmd.Flags().GetString("key")

	if _, err := runner.ParseRepKey(key); err != nil {
		return err
	}
	c, ok := findCheck(checkName)
	if !ok {
		return fmt.Errorf("unknown check %q", checkName)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := reporting.LogLevelInfo
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stdout,
	})

	runErr := c.run(checkOpts{
		only: key,
		cfg:  cfg,
		log:  logger,
	})

	var repErr *runner.RepError
	switch {
	case errors.As(runErr, &repErr):
		fmt.Printf("rep %s FAILED with value %v: %v\n", repErr.Key, repErr.Value, repErr.Err)
		return runErr
	case errors.Is(runErr, runner.ErrOnlySet):
		fmt.Printf("rep %s passed\n", key)
		return nil
	case runErr != nil:
		return runErr
	default:
		return nil
	}
}
