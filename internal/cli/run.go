package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/scenario"
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/value"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// IDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs scenario.IDGenerator
}

// RunStep is one step of a run report.
type RunStep struct {
	Seq    int64  `json:"seq"`
	Op     string `json:"op"`
	Output []any  `json:"output"`
	Hash   string `json:"output_hash"`
}

// RunReport is the output of the run command.
type RunReport struct {
	RunID    string         `json:"run_id"`
	Scenario string         `json:"scenario"`
	Pass     bool           `json:"pass"`
	Steps    []RunStep      `json:"steps"`
	Errors   []string       `json:"errors,omitempty"`
	Stats    map[string]any `json:"stats"`
	Journal  string         `json:"journal,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario",
		Long: `Run a single scenario and print the derived output after every step.

With --db the run and every step are journaled to a SQLite database
(created if it doesn't exist) for later trace and replay.

Exit codes:
  0 - All expectations matched
  1 - An expectation failed, a step failed or the scenario is invalid
  2 - Command error (missing file, database error, etc.)

Examples:
  tracksync run ./scenarios/filtered_insert.yaml
  tracksync run --db ./tracksync.db ./scenarios/filtered_insert.yaml
  tracksync run ./scenarios/batch.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal database")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	sc, err := loadScenarioFile(f, path)
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return commandError(f, ErrCodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := scenario.Run(ctx, sc, scenario.Options{
		Store:  st,
		IDs:    opts.IDs,
		Logger: logger,
	})
	if err != nil {
		return commandError(f, ErrCodeGeneric, "scenario execution failed", err)
	}

	report := newRunReport(result)
	report.Journal = opts.Database

	if f.IsJSON() {
		if !report.Pass {
			if err := f.Failure(report, ErrCodeScenarioFailed, "scenario failed"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "scenario failed")
		}
		return f.Success(report)
	}

	writeRunText(cmd.OutOrStdout(), report)
	if !report.Pass {
		return NewExitError(ExitFailure, "scenario failed")
	}
	return nil
}

func newRunReport(result *scenario.Result) RunReport {
	report := RunReport{
		RunID:    result.RunID,
		Scenario: result.Scenario,
		Pass:     result.Pass,
		Steps:    make([]RunStep, len(result.Trace)),
		Errors:   result.Errors,
		Stats:    map[string]any{},
	}
	for i, ev := range result.Trace {
		report.Steps[i] = RunStep{
			Seq:    ev.Seq,
			Op:     ev.Op,
			Output: plainList(ev.Output),
			Hash:   ev.OutputHash,
		}
	}
	if n := len(result.Trace); n > 0 {
		report.Stats = value.ToAny(result.Trace[n-1].Stats).(map[string]any)
	}
	return report
}

func writeRunText(w io.Writer, report RunReport) {
	fmt.Fprintf(w, "Scenario: %s\n", report.Scenario)
	fmt.Fprintf(w, "Run: %s\n\n", report.RunID)
	for _, st := range report.Steps {
		fmt.Fprintf(w, "  [%d] %-10s %s\n", st.Seq, st.Op, formatOutput(st.Output))
	}
	fmt.Fprintln(w)

	if report.Pass {
		fmt.Fprintf(w, "✓ %s passed\n", report.Scenario)
	} else {
		fmt.Fprintf(w, "✗ %s failed\n", report.Scenario)
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(e, "\n", "\n  "))
		}
	}
	if report.Journal != "" {
		fmt.Fprintf(w, "Journaled to %s\n", report.Journal)
	}
}

// formatOutput renders an output snapshot as canonical JSON.
func formatOutput(out []any) string {
	v, err := value.FromAny(out)
	if err != nil {
		return fmt.Sprint(out)
	}
	return value.MustCanonical(v)
}
