package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spboyer/hetsird/internal/dataset"
	"github.com/spboyer/hetsird/internal/reporting"
	"github.com/spboyer/hetsird/internal/spinner"
	"github.com/spboyer/hetsird/internal/sweep"
	"github.com/spf13/cobra"
)

type sweepOptions struct {
	scenario  scenarioOptions
	param     string
	values    []string
	workers   int
	junit     string
	outputDir string
	format    string
	verbose   bool
}

// sweepRow is the JSON form of one sweep outcome.
type sweepRow struct {
	Scenario       string   `json:"scenario"`
	Value          string   `json:"value"`
	R0             *float64 `json:"r0,omitempty"`
	PeakInfectious float64  `json:"peak_infectious,omitempty"`
	PeakTime       float64  `json:"peak_time,omitempty"`
	AttackRate     float64  `json:"attack_rate,omitempty"`
	Deaths         float64  `json:"deaths,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func newSweepCommand() *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep <scenario.yaml>",
		Short: "Simulate a scenario over a range of parameter values",
		Long: `Simulate one scenario per value of a parameter, in parallel.

The parameter is any key accepted by --set. A failing run does not stop the
others; the command exits non-zero when any run failed. Results can be
written as JUnit XML for CI dashboards.`,
		Example: `  hetsird sweep baseline.yaml --param rates.beta --values 0.1,0.2,0.3,0.4
  hetsird sweep baseline.yaml --param solver.method --values euler,heun,rk4,rk45 --junit sweep.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sweepCommandE(cmd, args[0], opts)
		},
	}

	opts.scenario.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.param, "param", "", "Scenario key to vary, e.g. rates.beta")
	cmd.Flags().StringSliceVar(&opts.values, "values", nil, "Comma-separated values for the parameter")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent runs (default from project config)")
	cmd.Flags().StringVar(&opts.junit, "junit", "", "Write JUnit XML results to this path")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Save each trajectory as CSV in this directory")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table or json")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print progress for every run")
	_ = cmd.MarkFlagRequired("param")
	_ = cmd.MarkFlagRequired("values")

	return cmd
}

func sweepCommandE(cmd *cobra.Command, path string, opts *sweepOptions) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(opts.format, cfg.Output.Format, "table", "json")
	if err != nil {
		return err
	}

	base, err := opts.scenario.load(path)
	if err != nil {
		return err
	}
	scenarios, err := sweep.Expand(base, opts.param, opts.values)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Sweep.Workers
	}
	runner := sweep.NewRunner(sweep.WithWorkers(workers), sweep.WithDefaults(cfg.SimulationDefaults()))
	switch {
	case opts.verbose:
		runner.OnProgress(progressPrinter(cmd.ErrOrStderr()))
	case isTerminal(cmd.ErrOrStderr()):
		spin := spinner.Start(cmd.ErrOrStderr(), fmt.Sprintf("Running %d scenarios", len(scenarios)))
		defer spin.Stop()
		runner.OnProgress(func(e sweep.ProgressEvent) {
			switch e.EventType {
			case sweep.EventRunComplete:
				spin.Update(fmt.Sprintf("[%d/%d] %s", e.RunNum, e.TotalRuns, e.Scenario))
			case sweep.EventSweepComplete:
				spin.Stop()
			}
		})
	}

	started := time.Now()
	outcomes, err := runner.Run(cmd.Context(), scenarios)
	elapsed := time.Since(started)
	if err != nil {
		return fmt.Errorf("sweep interrupted: %w", err)
	}

	rows := make([]sweepRow, len(outcomes))
	var failures []error
	for i, o := range outcomes {
		rows[i] = sweepRow{Scenario: o.Scenario, Value: opts.values[i]}
		if o.Err != nil {
			rows[i].Error = o.Err.Error()
			failures = append(failures, fmt.Errorf("%s: %w", o.Scenario, o.Err))
			continue
		}
		s := o.Result.Summary
		rows[i].R0 = o.Result.R0
		rows[i].PeakInfectious = s.PeakInfectious
		rows[i].PeakTime = s.PeakTime
		rows[i].AttackRate = s.AttackRate
		rows[i].Deaths = s.TotalDeaths
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := writeJSON(out, rows); err != nil {
			return err
		}
	} else {
		printSweepTable(out, opts.param, rows, elapsed)
	}

	if opts.junit != "" {
		suites := reporting.ConvertSweepToJUnit(base.Name, outcomes, started, elapsed)
		if err := reporting.WriteJUnitXML(suites, opts.junit); err != nil {
			return fmt.Errorf("failed to write JUnit XML: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "JUnit results saved to: %s\n", opts.junit) //nolint:errcheck
	}

	if opts.outputDir != "" {
		if err := saveSweepTrajectories(opts.outputDir, outcomes); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d runs failed: %w", len(failures), len(outcomes), errors.Join(failures...))
	}
	return nil
}

func progressPrinter(w io.Writer) sweep.ProgressListener {
	return func(e sweep.ProgressEvent) {
		switch e.EventType {
		case sweep.EventSweepStart:
			fmt.Fprintf(w, "Running %d scenarios\n", e.TotalRuns) //nolint:errcheck
		case sweep.EventRunComplete:
			status := "✓"
			if e.Err != nil {
				status = "✗"
			}
			fmt.Fprintf(w, "  %s [%d/%d] %s (%s)\n", status, e.RunNum, e.TotalRuns, e.Scenario, //nolint:errcheck
				formatDuration(time.Duration(e.DurationMs)*time.Millisecond))
		}
	}
}

func printSweepTable(w io.Writer, param string, rows []sweepRow, elapsed time.Duration) {
	printHeading(w, "SWEEP "+strings.ToUpper(param))

	t := newTable(param, "R0", "Peak I", "Peak t", "Attack", "Deaths", "Status").alignRight(0, 1, 2, 3, 4, 5)
	for _, r := range rows {
		if r.Error != "" {
			t.addRow(r.Value, "-", "-", "-", "-", "-", "✗ "+truncateName(r.Error, 50))
			continue
		}
		r0 := "n/a"
		if r.R0 != nil {
			r0 = formatNumber(*r.R0)
		}
		t.addRow(r.Value, r0, formatNumber(r.PeakInfectious), formatNumber(r.PeakTime),
			fmt.Sprintf("%.1f%%", r.AttackRate*100), formatNumber(r.Deaths), "✓")
	}
	t.render(w)
	fmt.Fprintf(w, "\n%d runs in %s\n", len(rows), formatDuration(elapsed)) //nolint:errcheck
}

func saveSweepTrajectories(dir string, outcomes []sweep.Outcome) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		path := filepath.Join(dir, sanitizeFileName(o.Scenario)+".csv")
		if err := dataset.SaveTrajectory(path, o.Result.Trajectory); err != nil {
			return fmt.Errorf("failed to save %s: %w", o.Scenario, err)
		}
	}
	return nil
}

// sanitizeFileName replaces characters that are awkward in file names.
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}
