package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/jihwankim/repcheck/pkg/config"
	"github.com/jihwankim/repcheck/pkg/metrics"
	"github.com/jihwankim/repcheck/pkg/reporting"
	"github.com/jihwankim/repcheck/pkg/runner"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Args:  cobra.NoArgs,
	Short: "Run the built-in self-properties with a reproducible seed",
	Long: `Stress runs every built-in self-property (or a named subset) through the
full rep stream: the ordered enumeration pass, then seeded random reps.
Failures are shrunk and reported with a rep key that reproduces them.

The REPS environment variable scales the rep count: "50%" halves it and
skips sometimes-validity, "5x" multiplies it and enables coverage
threshold analysis, "0" skips random reps entirely.

Examples:
  repcheck stress
  repcheck stress --checks int-bounds,string-printable
  repcheck stress --seed 42 --reps 5000
  REPS=10x repcheck stress`,
	RunE: runStress,
}

func init() {
	stressCmd.Flags().String("checks", "", "comma-separated check names (default: all)")
	stressCmd.Flags().Int("reps", 0, "baseline rep count per check (overrides config)")
	stressCmd.Flags().Int64("seed", 0, "random seed for reproducibility (0 = auto)")
	stressCmd.Flags().String("log", "reports/stress_log.jsonl", "JSONL run log path")
	stressCmd.Flags().Bool("metrics", false, "dump prometheus counters after the run")
}

// stressResult is one entry in the JSONL run log.
type stressResult struct {
	Session   string  `json:"session"`
	Seed      int32   `json:"seed"`
	Check     string  `json:"check"`
	Result    string  `json:"result"` // "passed" | "failed"
	Error     string  `json:"error,omitempty"`
	ElapsedS  float64 `json:"elapsed_s"`
	Timestamp string  `json:"timestamp"`
}

func runStress(cmd *cobra.Command, _ []string) error {
	checksFlag, _ := cmd.Flags().GetString("checks")
	reps, _ := cmd.Flags().GetInt("reps")
	seed64, _ := cmd.Flags().GetInt64("seed")
	logPath, _ := cmd.Flags().GetString("log")
	dumpMetrics, _ := cmd.Flags().GetBool("metrics")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	selected, err := selectChecks(checksFlag)
	if err != nil {
		return err
	}

	seed := int32(seed64)
	if seed == 0 {
		seed = int32(time.Now().UnixNano()) ^ int32(rand.Uint32())
		if seed == 0 {
			seed = 1
		}
	}

	logLevel := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stdout,
	})

	registry := prometheus.NewRegistry()
	met := metrics.New(registry)

	session := uuid.NewString()
	fmt.Printf("Seed: %d  (pass --seed %d to reproduce)\n\n", seed, seed)
	fmt.Printf("Running %d checks  (session %s)\n", len(selected), session)
	fmt.Println(strings.Repeat("─", 72))

	passed, failed := 0, 0
	for i, c := range selected {
		fmt.Printf("\n[%d/%d] %s  — %s\n", i+1, len(selected), c.name, c.desc)

		start := time.Now()
		runErr := c.run(checkOpts{
			reps: reps,
			seed: seed,
			cfg:  cfg,
			log:  logger,
			met:  met,
		})
		elapsed := time.Since(start).Seconds()

		status := "passed"
		errText := ""
		if runErr != nil {
			status = "failed"
			errText = runErr.Error()
			failed++
			var repErr *runner.RepError
			if errors.As(runErr, &repErr) {
				fmt.Printf("  shrunk failing value: %v  (rep %s)\n", repErr.Value, repErr.Key)
			}
		} else {
			passed++
		}
		fmt.Printf("  → %s  (%.1fs)\n", strings.ToUpper(status), elapsed)

		appendStressLog(logger, logPath, stressResult{
			Session:   session,
			Seed:      seed,
			Check:     c.name,
			Result:    status,
			Error:     errText,
			ElapsedS:  math.Round(elapsed*10) / 10,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	fmt.Println("\n" + strings.Repeat("─", 72))
	fmt.Printf("Done.  %d passed  %d failed  (seed=%d)\n", passed, failed, seed)
	if failed > 0 {
		fmt.Printf("\nReproduce: repcheck stress --seed %d\n", seed)
	}
	fmt.Printf("Log: %s\n", logPath)

	if dumpMetrics {
		if err := writeMetrics(os.Stdout, registry); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(selected))
	}
	return nil
}

// selectChecks resolves the --checks flag against the registry.
func selectChecks(flag string) ([]check, error) {
	if flag == "" {
		return allChecks(), nil
	}
	var out []check
	for _, name := range strings.Split(flag, ",") {
		name = strings.TrimSpace(name)
		c, ok := findCheck(name)
		if !ok {
			names := make([]string, 0)
			for _, c := range allChecks() {
				names = append(names, c.name)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("unknown check %q; valid: %s", name, strings.Join(names, ", "))
		}
		out = append(out, c)
	}
	return out, nil
}

// writeMetrics dumps the registry in prometheus text exposition format.
func writeMetrics(w *os.File, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// appendStressLog appends one result entry to the JSONL log file.
func appendStressLog(logger *reporting.Logger, path string, entry stressResult) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("Failed to create log dir", "error", err)
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Warn("Failed to open log file", "error", err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = f.WriteString(string(data) + "\n")
}
