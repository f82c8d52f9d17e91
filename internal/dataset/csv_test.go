package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func trajectory() *models.Trajectory {
	return models.NewTrajectory(models.TrajectoryInfo{Population: 1000, StepSize: 0.1, Horizon: 0.2}, []models.Sample{
		{Time: 0, State: models.CompartmentState{S: 999, I: 1}},
		{Time: 0.1, State: models.CompartmentState{S: 998.7001, I: 1.2, R: 0.0999, D: 1e-12}},
		{Time: 0.2, State: models.CompartmentState{S: 1.0 / 3, I: 2.0 / 3, R: 999, D: 0}},
	})
}

func TestWriteTrajectory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrajectory(&buf, trajectory()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,susceptible,infectious,recovered,deceased", lines[0])
	assert.Equal(t, "0,999,1,0,0", lines[1])
	assert.Equal(t, "0.1,998.7001,1.2,0.0999,1e-12", lines[2])
}

func TestSaveAndLoadTrajectory(t *testing.T) {
	for _, name := range []string{"run.csv", "run.csv.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveTrajectory(path, trajectory()))

			got, err := LoadTrajectory(path)
			require.NoError(t, err)
			assert.Equal(t, trajectory().Samples(), got.Samples())

			info := got.Info()
			assert.Equal(t, 1000.0, info.Population)
			assert.Equal(t, 0.1, info.StepSize)
			assert.Equal(t, 0.2, info.Horizon)
		})
	}
}

func TestSaveTrajectory_GzipIsCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv.gz")
	require.NoError(t, SaveTrajectory(path, trajectory()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2])
}

func TestLoadTrajectory_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"empty", "", "no header row"},
		{"wrong header", "t,s,i,r,d\n0,1,0,0,0\n", "unexpected header"},
		{"short row", "time,susceptible,infectious,recovered,deceased\n0,1,0,0\n", "row 2 has 4 columns"},
		{"not a number", "time,susceptible,infectious,recovered,deceased\n0,1,0,0,0\n1,x,0,0,0\n", "row 3 column susceptible"},
		{"time goes backwards", "time,susceptible,infectious,recovered,deceased\n1,1,0,0,0\n0.5,1,0,0,0\n", "does not increase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, t.TempDir(), "bad.csv", tt.csv)
			_, err := LoadTrajectory(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadTrajectory(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	path := writeCSV(t, t.TempDir(), "plain.csv.gz", "time,susceptible,infectious,recovered,deceased\n")
	_, err = LoadTrajectory(path)
	require.Error(t, err)
}

func TestLoadTrajectory_HeaderOnly(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "empty.csv", "time,susceptible,infectious,recovered,deceased\n")
	tr, err := LoadTrajectory(path)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Len())
}
