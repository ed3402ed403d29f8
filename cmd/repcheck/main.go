package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	version = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "repcheck",
	Short: "Property-testing stress runner",
	Long: `Repcheck stresses the built-in generator catalog with reproducible
property checks: a deterministic ordered pass followed by seeded random
reps, automatic shrinking of failures, and coverage analysis of
sometimes/checkOdds observations.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(replayCmd)
}

// Commands are defined in separate files:
// - stressCmd in stress.go
// - replayCmd in replay.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
