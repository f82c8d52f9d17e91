package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/projectconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand_CreatesProject(t *testing.T) {
	dir := inTempDir(t)

	stdout, _, err := runCLI(t, "init", "outbreak")
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, projectconfig.FileName)
	scenarioPath := filepath.Join(dir, projectconfig.DefaultScenariosDir, "outbreak.yaml")
	assert.FileExists(t, cfgPath)
	assert.FileExists(t, scenarioPath)
	assert.Contains(t, stdout, "Next: hetsird simulate")

	sc, err := models.LoadScenario(scenarioPath)
	require.NoError(t, err)
	assert.Equal(t, "outbreak", sc.Name)
	assert.Equal(t, 1000.0, sc.Initial.Total())

	_, _, err = runCLI(t, "simulate", scenarioPath, "-f", "json")
	require.NoError(t, err)
}

func TestInitCommand_ExistingFiles(t *testing.T) {
	dir := inTempDir(t)
	custom := "paths:\n  scenarios: models/\n"
	writeFile(t, dir, projectconfig.FileName, custom)

	_, _, err := runCLI(t, "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, projectconfig.FileName))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data), "existing project config is kept")
	scenarioPath := filepath.Join(dir, "models", "baseline.yaml")
	assert.FileExists(t, scenarioPath)

	_, _, err = runCLI(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, "init", "--force")
	require.NoError(t, err)
}

func TestInitCommand_Dir(t *testing.T) {
	dir := inTempDir(t)
	target := filepath.Join(dir, "nested", "project")

	_, _, err := runCLI(t, "init", "--dir", target)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target, projectconfig.FileName))
	assert.FileExists(t, filepath.Join(target, projectconfig.DefaultScenariosDir, "baseline.yaml"))
}
