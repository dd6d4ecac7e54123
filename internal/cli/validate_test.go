package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeScenario(t, dir, "passing.yaml", passingScenario)
	b := writeScenario(t, dir, "failing.yaml", failingScenario)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 scenario(s) valid")
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)
	writeScenario(t, dir, "bad.yaml", "name: bad\ndescription: d\nsteps: [{op: shuffle}]\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "bad.yaml")
	assert.Contains(t, out, ErrCodeInvalidScenario+`: invalid scenario: steps[0]: unknown op "shuffle"`)
}

func TestValidateJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.yaml", "name: bad\ndescription: d\ntransform: {map: 'x.n +'}\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, ErrCodeExpression, resp.Data.Errors[0].Code)
	assert.Equal(t, ErrCodeExpression, resp.Error.Code)
}

func TestValidateMissingPath(t *testing.T) {
	_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
