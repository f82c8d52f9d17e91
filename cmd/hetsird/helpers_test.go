package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// classicYAML is a fast-growing epidemic that explicit fixed-step methods
// cannot follow at step 0.1.
const classicYAML = `name: classic
population: 1000
initial: {susceptible: 999, infectious: 1}
rates: {beta: 0.3, gamma: 0.1}
time: {horizon: 100, step: 0.1}
`

// smoothYAML is a slow epidemic every method integrates without trouble.
const smoothYAML = `name: smooth
population: 1000
initial: {susceptible: 999, infectious: 1}
rates: {beta: 0.0003, gamma: 0.1, theta: 0.01}
time: {horizon: 10, step: 1}
`

// inTempDir switches to a fresh directory so no project config leaks in.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// runCLI executes the root command and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
