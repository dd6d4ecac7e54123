package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/scenario"
)

// ValidationError describes one invalid scenario file.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenarios without running them",
		Long: `Validate scenario files without running them.

Checks YAML structure (unknown fields are rejected), required fields,
step arguments, order settings and compiles every CUE expression.
A directory argument validates every scenario inside it.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return commandError(f, ErrCodeNotFound, fmt.Sprintf("path not found: %s", p), nil)
		}
		if err != nil {
			return commandError(f, ErrCodeGeneric, "failed to stat path", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := findScenarioFiles(p, "")
		if err != nil {
			return commandError(f, ErrCodeGeneric, "failed to find scenarios", err)
		}
		files = append(files, found...)
	}

	result := ValidationResult{Valid: true, Files: len(files)}
	for _, file := range files {
		f.VerboseLog("Validating %s", file)
		if _, err := scenario.LoadScenario(file); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				File:    file,
				Code:    scenarioErrorCode(err),
				Message: err.Error(),
			})
		}
	}

	if result.Valid {
		if f.IsJSON() {
			return f.Success(result)
		}
		fmt.Fprintf(f.Writer, "✓ %d scenario(s) valid\n", result.Files)
		return nil
	}
	return outputValidationErrors(f, result)
}

// outputValidationErrors outputs validation failures (exit code 1).
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))

	if f.IsJSON() {
		first := result.Errors[0]
		if err := f.Failure(result, first.Code, first.Message); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range result.Errors {
		fmt.Fprintln(f.Writer, e.File)
		fmt.Fprintf(f.Writer, "  %s: %s\n\n", e.Code, e.Message)
	}
	return NewExitError(ExitFailure, msg)
}
