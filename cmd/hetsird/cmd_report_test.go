package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCommand_Markdown(t *testing.T) {
	dir := inTempDir(t)
	smooth := writeFile(t, dir, "smooth.yaml", smoothYAML)
	classic := writeFile(t, dir, "classic.yaml", classicYAML)

	stdout, _, err := runCLI(t, "report", smooth, classic, "--title", "Two outbreaks")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Two outbreaks")
	assert.Contains(t, stdout, "## smooth")
	assert.Contains(t, stdout, "## classic")
}

func TestReportCommand_HTMLFromExtension(t *testing.T) {
	dir := inTempDir(t)
	smooth := writeFile(t, dir, "smooth.yaml", smoothYAML)
	out := filepath.Join(dir, "report.html")

	_, stderr, err := runCLI(t, "report", smooth, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Report saved to")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
	assert.Contains(t, string(data), "<table>")
}

func TestReportCommand_FailingScenario(t *testing.T) {
	dir := inTempDir(t)
	classic := writeFile(t, dir, "classic.yaml", classicYAML)

	_, _, err := runCLI(t, "report", classic, "--method", "euler")
	require.Error(t, err)
	assert.Equal(t, ExitInstability, exitCode(err))
}

func TestReportCommand_UnsupportedFormat(t *testing.T) {
	dir := inTempDir(t)
	smooth := writeFile(t, dir, "smooth.yaml", smoothYAML)

	_, _, err := runCLI(t, "report", smooth, "-f", "pdf")
	assert.Error(t, err)
}

func TestFormatFromExtension(t *testing.T) {
	assert.Equal(t, "html", formatFromExtension("a.HTML"))
	assert.Equal(t, "html", formatFromExtension("a.htm"))
	assert.Equal(t, "markdown", formatFromExtension("a.md"))
	assert.Equal(t, "markdown", formatFromExtension(""))
}
