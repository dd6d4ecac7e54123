package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/testutil"
)

func TestRunPassingScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "passing.yaml", passingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Run: run-passing")
	assert.Contains(t, out, `[0] init       [{"n":2},{"n":3}]`)
	assert.Contains(t, out, `[2] remove     [{"n":3},{"n":4}]`)
	assert.Contains(t, out, "✓ passing passed")
}

func TestRunFailingScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "failing.yaml", failingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing failed")
	assert.Contains(t, out, "Expected: [{\"n\":2}]")
}

func TestRunJSON(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "passing.yaml", passingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	require.Len(t, resp.Data.Steps, 3)
	assert.Equal(t, "push", resp.Data.Steps[1].Op)
	assert.Len(t, resp.Data.Steps[1].Output, 3)
	assert.Len(t, resp.Data.Steps[1].Hash, 64)
	assert.EqualValues(t, 1, resp.Data.Stats["resyncs"])
}

func TestRunJSONFailure(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "failing.yaml", failingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
}

func TestRunJournals(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "passing.yaml", passingScenario)
	dbPath := filepath.Join(dir, "journal.db")

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", dbPath, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Journaled to "+dbPath)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-passing")
	require.NoError(t, err)
	assert.Equal(t, store.StatusPassed, run.Status)

	steps, err := st.ReadSteps(context.Background(), "run-passing")
	require.NoError(t, err)
	assert.Len(t, steps, 3)
}

func TestRunGeneratedID(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "noid.yaml", `
name: noid
description: no fixed run id
items: []
`)
	opts := &RunOptions{RootOptions: &RootOptions{Format: "text"}, IDs: testutil.FixedID("cli-run")}
	cmd := NewRunCommand(opts.RootOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runScenarioFile(opts, args[0], cmd)
	}

	out, _, err := execute(cmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Run: cli-run")
}

func TestRunMissingFile(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestRunInvalidScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", "name: bad\ndescription: d\ntransform: {filter: 'x.n >'}\n")

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeExpression)
}

func TestRunBadDatabasePath(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "passing.yaml", passingScenario)

	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", "/nonexistent/dir/journal.db", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
