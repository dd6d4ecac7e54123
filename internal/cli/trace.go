package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/value"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	List     bool
}

// TraceStep is one journaled step.
type TraceStep struct {
	Seq        int64          `json:"seq"`
	Op         string         `json:"op"`
	Output     []any          `json:"output"`
	OutputHash string         `json:"output_hash"`
	Stats      map[string]any `json:"stats"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run   RunInfo     `json:"run"`
	Steps []TraceStep `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Show a journaled run",
		Long: `Show the journaled steps of a run: the derived output after every step,
its snapshot hash and the engine counters.

Without a run id the latest run is shown. --list prints every run instead.

Examples:
  tracksync trace --db ./tracksync.db
  tracksync trace --db ./tracksync.db 0190a1b2-...
  tracksync trace --db ./tracksync.db --list
  tracksync trace --db ./tracksync.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runTrace(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list runs instead of showing one")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openJournal(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.List {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return commandError(f, ErrCodeStore, "failed to list runs", err)
		}
		infos := make([]RunInfo, len(runs))
		for i, r := range runs {
			infos[i] = newRunInfo(r)
		}
		if f.IsJSON() {
			return f.Success(infos)
		}
		outputRunList(f.Writer, infos)
		return nil
	}

	run, err := resolveRun(ctx, f, st, runID)
	if err != nil {
		return err
	}
	steps, err := st.ReadSteps(ctx, run.ID)
	if err != nil {
		return commandError(f, ErrCodeStore, "failed to read steps", err)
	}

	result := TraceResult{Run: newRunInfo(run), Steps: make([]TraceStep, len(steps))}
	for i, s := range steps {
		result.Steps[i] = TraceStep{
			Seq:        s.Seq,
			Op:         s.Op,
			Output:     plainList(s.Output),
			OutputHash: s.OutputHash,
			Stats:      value.ToAny(s.Stats).(map[string]any),
		}
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	outputTraceText(f.Writer, result, opts.Verbose)
	return nil
}

func outputRunList(w io.Writer, runs []RunInfo) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "  [%d] %s  %-8s %s (%s)\n", r.Seq, r.ID, r.Status, r.Scenario, r.Order)
	}
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Trace for Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Scenario: %s\n", result.Run.Scenario)
	fmt.Fprintf(w, "Order: %s\n", result.Run.Order)
	fmt.Fprintf(w, "Status: %s\n", result.Run.Status)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Steps ===")
	if len(result.Steps) == 0 {
		fmt.Fprintln(w, "  (no steps)")
		return
	}
	for _, s := range result.Steps {
		fmt.Fprintf(w, "  [%d] %-10s %s  %s\n", s.Seq, s.Op, truncateID(s.OutputHash), formatOutput(s.Output))
		if verbose {
			fmt.Fprintf(w, "       Stats: %s\n", formatStats(s.Stats))
		}
	}
}

func formatStats(stats map[string]any) string {
	v, err := value.FromAny(stats)
	if err != nil {
		return fmt.Sprint(stats)
	}
	return value.MustCanonical(v)
}
