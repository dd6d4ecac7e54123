package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/scenario"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
}

// ReplayDivergence is a step whose replayed output differs.
type ReplayDivergence struct {
	Seq          int64  `json:"seq"`
	Op           string `json:"op"`
	RecordedHash string `json:"recorded_hash"`
	ReplayedHash string `json:"replayed_hash,omitempty"`
}

// ReplayResult holds the replay result.
type ReplayResult struct {
	Run             RunInfo            `json:"run"`
	Compared        int                `json:"compared"`
	Extra           int                `json:"extra"`
	ScenarioChanged bool               `json:"scenario_changed"`
	Deterministic   bool               `json:"deterministic"`
	Divergences     []ReplayDivergence `json:"divergences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario>",
		Short: "Re-run a scenario and compare with its journal",
		Long: `Re-run a scenario and compare every step's output hash with a journaled run.

The replay itself is not journaled. A changed scenario file is reported
but still compared.

Exit codes:
  0 - Every step reproduced the journaled output
  1 - Outputs diverged (or the scenario is invalid)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  tracksync replay --db ./tracksync.db ./scenarios/batch.yaml
  tracksync replay --db ./tracksync.db --run 0190a1b2-... ./scenarios/batch.yaml
  tracksync replay --db ./tracksync.db ./scenarios/batch.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to compare against (default: latest run)")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sc, err := loadScenarioFile(f, path)
	if err != nil {
		return err
	}

	st, err := openJournal(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := resolveRun(ctx, f, st, opts.RunID)
	if err != nil {
		return err
	}
	if run.Scenario != sc.Name {
		return commandError(f, ErrCodeInvalidScenario,
			fmt.Sprintf("run %s recorded scenario %q, not %q", run.ID, run.Scenario, sc.Name), nil)
	}

	f.VerboseLog("Replaying %s against run %s", sc.Name, run.ID)
	sc.RunID = run.ID
	result, err := scenario.Run(ctx, sc, scenario.Options{Logger: logger})
	if err != nil {
		return commandError(f, ErrCodeGeneric, "replay failed", err)
	}

	report, err := st.CompareRun(ctx, run.ID, result.JournalSteps())
	if err != nil {
		return commandError(f, ErrCodeStore, "failed to compare run", err)
	}

	out := ReplayResult{
		Run:             newRunInfo(run),
		Compared:        report.Compared,
		Extra:           report.Extra,
		ScenarioChanged: run.ScenarioHash != sc.Hash,
		Deterministic:   report.Identical(),
	}
	for _, d := range report.Divergences {
		out.Divergences = append(out.Divergences, ReplayDivergence{
			Seq:          d.Seq,
			Op:           d.Op,
			RecordedHash: d.RecordedHash,
			ReplayedHash: d.ReplayedHash,
		})
	}

	if f.IsJSON() {
		if !out.Deterministic {
			if err := f.Failure(out, ErrCodeReplayDiverged, "replay diverged from journal"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "replay diverged from journal")
		}
		return f.Success(out)
	}

	outputReplayText(f.Writer, out)
	if !out.Deterministic {
		return NewExitError(ExitFailure, "replay diverged from journal")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, r ReplayResult) {
	fmt.Fprintf(w, "Replay of Run: %s (%s)\n", r.Run.ID, r.Run.Scenario)
	if r.ScenarioChanged {
		fmt.Fprintln(w, "  ! scenario file changed since the run was journaled")
	}
	fmt.Fprintf(w, "  Compared: %d step(s)\n", r.Compared)
	if r.Extra > 0 {
		fmt.Fprintf(w, "  Extra:    %d step(s) beyond the journal\n", r.Extra)
	}
	for _, d := range r.Divergences {
		replayed := truncateID(d.ReplayedHash)
		if replayed == "" {
			replayed = "(missing)"
		}
		fmt.Fprintf(w, "  ✗ [%d] %s: recorded %s, replayed %s\n", d.Seq, d.Op, truncateID(d.RecordedHash), replayed)
	}
	fmt.Fprintln(w)

	if r.Deterministic {
		fmt.Fprintln(w, "✓ Replay matches journal")
	} else {
		fmt.Fprintln(w, "✗ Replay diverged from journal")
	}
}
