package main

import (
	"fmt"
	"io"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/reporting"
	"github.com/spboyer/hetsird/internal/simulation"
	"github.com/spf13/cobra"
)

// comparisonReport is the JSON form of the compare command output.
type comparisonReport struct {
	Baseline   string              `json:"baseline"`
	Candidate  string              `json:"candidate"`
	Comparison analysis.Comparison `json:"comparison"`
}

func newCompareCommand() *cobra.Command {
	var candidateOpts scenarioOptions
	var format string

	cmd := &cobra.Command{
		Use:   "compare <baseline.yaml> [candidate.yaml]",
		Short: "Compare two scenarios",
		Long: `Simulate two scenarios and report how the candidate differs from the
baseline: peak size and timing, final compartments and attack rate.

Overrides apply to the candidate only. With a single argument the candidate
is the baseline with the overrides applied, which makes what-if questions a
one-liner.`,
		Example: `  hetsird compare baseline.yaml lockdown.yaml
  hetsird compare baseline.yaml --subgroup name=vaccinated,share=0.4,infection_factor=0.1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(format, "", "table", "json", "markdown")
			if err != nil {
				return err
			}
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}

			baseline, err := models.LoadScenario(args[0])
			if err != nil {
				return fmt.Errorf("failed to load baseline: %w", err)
			}
			candidatePath := args[0]
			if len(args) == 2 {
				candidatePath = args[1]
			}
			candidate, err := candidateOpts.load(candidatePath)
			if err != nil {
				return err
			}

			defaults := cfg.SimulationDefaults()
			base, err := simulation.Run(cmd.Context(), baseline, defaults)
			if err != nil {
				return fmt.Errorf("simulating baseline: %w", err)
			}
			cand, err := simulation.Run(cmd.Context(), candidate, defaults)
			if err != nil {
				return fmt.Errorf("simulating candidate: %w", err)
			}

			report := &comparisonReport{
				Baseline:   label(baseline, args[0]),
				Candidate:  label(candidate, candidatePath),
				Comparison: analysis.Compare(base.Summary, cand.Summary),
			}
			if report.Baseline == report.Candidate {
				report.Candidate += " (modified)"
			}

			out := cmd.OutOrStdout()
			switch f {
			case "json":
				return writeJSON(out, report)
			case "markdown":
				_, err := fmt.Fprint(out, reporting.ComparisonMarkdown(report.Baseline, report.Candidate, report.Comparison))
				return err
			}
			printComparisonTable(out, report)
			return nil
		},
	}

	candidateOpts.register(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or markdown")

	return cmd
}

func label(sc *models.Scenario, path string) string {
	if sc.Name != "" {
		return sc.Name
	}
	return path
}

func printComparisonTable(w io.Writer, r *comparisonReport) {
	printHeading(w, "COMPARISON REPORT")
	fmt.Fprintf(w, "  [1] %s\n  [2] %s\n\n", r.Baseline, r.Candidate) //nolint:errcheck

	c := r.Comparison
	t := newTable("Metric", "[1]", "[2]", "Delta").alignRight(1, 2, 3)
	row := func(name string, base, cand, delta float64) {
		t.addRow(name, formatNumber(base), formatNumber(cand), deltaIcon(delta)+fmt.Sprintf("%+.6g", delta))
	}
	row("Peak infectious", c.Baseline.PeakInfectious, c.Candidate.PeakInfectious, c.PeakDelta)
	row("Peak time", c.Baseline.PeakTime, c.Candidate.PeakTime, c.PeakTimeDelta)
	row("Final susceptible", c.Baseline.Final.S, c.Candidate.Final.S, c.FinalSDelta)
	row("Final recovered", c.Baseline.Final.R, c.Candidate.Final.R, c.FinalRDelta)
	row("Final deceased", c.Baseline.Final.D, c.Candidate.Final.D, c.FinalDDelta)
	row("Attack rate", c.Baseline.AttackRate, c.Candidate.AttackRate, c.AttackRateDelta)
	t.render(w)
}

func deltaIcon(d float64) string {
	switch {
	case d > 0:
		return "↑"
	case d < 0:
		return "↓"
	}
	return " "
}
