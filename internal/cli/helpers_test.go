package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: passing
description: push and remove under preserve-source
run_id: run-passing
items: [{n: 1}, {n: 2}, {n: 3}]
transform:
  filter: "x.n > 1"
expect: [{n: 2}, {n: 3}]
steps:
  - op: push
    item: {n: 4}
    expect: [{n: 2}, {n: 3}, {n: 4}]
  - op: remove
    index: 1
    expect: [{n: 3}, {n: 4}]
`

const failingScenario = `
name: failing
description: expects the wrong output
run_id: run-failing
items: [{n: 1}]
steps:
  - op: push
    item: {n: 2}
    expect: [{n: 2}]
`

// writeScenario writes a scenario file into dir and returns its path.
func writeScenario(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
