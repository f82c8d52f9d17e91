// Package dataset reads and writes trajectories as CSV files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spboyer/hetsird/internal/models"
)

// Header is the first row of every trajectory file.
var Header = []string{"time", "susceptible", "infectious", "recovered", "deceased"}

// WriteTrajectory writes tr as CSV. Values use the shortest representation
// that parses back to the same float64.
func WriteTrajectory(w io.Writer, tr *models.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	record := make([]string, len(Header))
	for _, s := range tr.Samples() {
		record[0] = formatFloat(s.Time)
		for i, v := range s.State.Vector() {
			record[i+1] = formatFloat(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTrajectory parses CSV written by WriteTrajectory. Population, step
// size and horizon of the result are derived from the samples.
func ReadTrajectory(r io.Reader) (*models.Trajectory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: empty input (no header row)")
	}
	if got := strings.Join(records[0], ","); got != strings.Join(Header, ",") {
		return nil, fmt.Errorf("csv: unexpected header %q, want %q", got, strings.Join(Header, ","))
	}

	samples := make([]models.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(Header) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", line, len(record), len(Header))
		}
		var values [5]float64
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %s: %q is not a number", line, Header[j], cell)
			}
			values[j] = v
		}
		if n := len(samples); n > 0 && values[0] <= samples[n-1].Time {
			return nil, fmt.Errorf("csv: row %d: time %g does not increase", line, values[0])
		}
		samples = append(samples, models.Sample{
			Time:  values[0],
			State: models.StateFromVector([4]float64{values[1], values[2], values[3], values[4]}),
		})
	}

	var info models.TrajectoryInfo
	if len(samples) > 0 {
		info.Population = samples[0].State.Total()
		info.Horizon = samples[len(samples)-1].Time
	}
	if len(samples) > 1 {
		info.StepSize = samples[1].Time - samples[0].Time
	}
	return models.NewTrajectory(info, samples), nil
}

// SaveTrajectory writes tr to path, gzip-compressed when path ends in .gz.
func SaveTrajectory(path string, tr *models.Trajectory) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !compressed(path) {
		return WriteTrajectory(f, tr)
	}
	zw := gzip.NewWriter(f)
	if err := WriteTrajectory(zw, tr); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// LoadTrajectory reads a file written by SaveTrajectory.
func LoadTrajectory(path string) (*models.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if compressed(path) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("csv: %s: %w", path, err)
		}
		defer zr.Close() //nolint:errcheck
		r = zr
	}

	tr, err := ReadTrajectory(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

func compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
