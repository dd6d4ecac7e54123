package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/expr"
	"github.com/roach88/tracksync/internal/scenario"
	"github.com/roach88/tracksync/internal/value"
)

// newFormatter builds the formatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadScenarioFile loads a scenario and classifies failures: a missing
// file is a command error (exit 2), an invalid scenario a failure (exit 1).
func loadScenarioFile(f *OutputFormatter, path string) (*scenario.Scenario, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, commandError(f, ErrCodeNotFound, "scenario file not found: "+path, nil)
	}
	sc, err := scenario.LoadScenario(path)
	if err != nil {
		code := scenarioErrorCode(err)
		_ = f.Error(code, err.Error(), map[string]string{"file": path})
		return nil, WrapExitError(ExitFailure, "invalid scenario", err)
	}
	return sc, nil
}

// scenarioErrorCode maps a load error to a response code.
func scenarioErrorCode(err error) string {
	var compileErr *expr.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeExpression
	}
	return ErrCodeInvalidScenario
}

// plainList converts an output snapshot for encoding/json.
func plainList(l value.List) []any {
	return value.ToAny(l).([]any)
}
