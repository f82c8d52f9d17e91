package main

import (
	"fmt"
	"io"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/rates"
	"github.com/spf13/cobra"
)

// ratesReport is the JSON form of the rates command output.
type ratesReport struct {
	Scenario       string                `json:"scenario"`
	ReferenceShare float64               `json:"reference_share"`
	Base           models.RateSet        `json:"base"`
	Effective      models.EffectiveRates `json:"effective"`
	R0             *float64              `json:"r0,omitempty"`
}

func newRatesCommand() *cobra.Command {
	var opts scenarioOptions
	var format string

	cmd := &cobra.Command{
		Use:   "rates <scenario.yaml>",
		Short: "Show the effective rates of a scenario",
		Long: `Show how a scenario's subgroups weight the base transition rates.

For every transition the weighting factor Φ = reference_share + Σ share·factor
is printed together with the effective rate λ = Φ·base and the basic
reproduction number at the initial susceptible population.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.load(args[0])
			if err != nil {
				return err
			}
			report, err := buildRatesReport(sc)
			if err != nil {
				return err
			}
			f, err := resolveFormat(format, "", "table", "json")
			if err != nil {
				return err
			}
			if f == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printRatesReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}

func buildRatesReport(sc *models.Scenario) (*ratesReport, error) {
	subgroups := sc.SubgroupList()
	ref := rates.ReferenceShare(subgroups)
	eff, err := rates.Compute(sc.Rates, ref, subgroups)
	if err != nil {
		return nil, err
	}
	report := &ratesReport{
		Scenario:       sc.Name,
		ReferenceShare: ref,
		Base:           sc.Rates,
		Effective:      eff,
	}
	if r0, err := analysis.BasicReproductionNumber(eff, sc.Initial.S); err == nil {
		report.R0 = &r0
	}
	return report, nil
}

func printRatesReport(w io.Writer, r *ratesReport) {
	fmt.Fprintf(w, "Reference share: %s\n\n", formatNumber(r.ReferenceShare)) //nolint:errcheck

	t := newTable("Transition", "Base", "Φ", "Effective").alignRight(1, 2, 3)
	phi := r.Effective.Phi
	t.addRow("infection (β)", formatNumber(r.Base.Beta), formatNumber(phi.Beta), formatNumber(r.Effective.Beta))
	t.addRow("recovery (γ)", formatNumber(r.Base.Gamma), formatNumber(phi.Gamma), formatNumber(r.Effective.Gamma))
	t.addRow("death (θ)", formatNumber(r.Base.Theta), formatNumber(phi.Theta), formatNumber(r.Effective.Theta))
	t.addRow("relapse (δ)", formatNumber(r.Base.Delta), formatNumber(phi.Delta), formatNumber(r.Effective.Delta))
	t.render(w)

	if r.R0 != nil {
		fmt.Fprintf(w, "\nR0: %s\n", formatNumber(*r.R0)) //nolint:errcheck
	} else {
		fmt.Fprintln(w, "\nR0: n/a (no removal from the infectious compartment)") //nolint:errcheck
	}
}
