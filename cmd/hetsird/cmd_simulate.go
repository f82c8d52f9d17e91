package main

import (
	"fmt"
	"strings"

	"github.com/spboyer/hetsird/internal/analysis"
	"github.com/spboyer/hetsird/internal/dataset"
	"github.com/spboyer/hetsird/internal/projectconfig"
	"github.com/spboyer/hetsird/internal/simulation"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	scenario  scenarioOptions
	output    string
	format    string
	every     int
	interpret bool
}

func newSimulateCommand() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Simulate a scenario",
		Long: `Simulate a scenario file and print the trajectory.

The scenario's subgroups are folded into population-wide effective rates and
the SIRD equations are integrated over the scenario's time horizon. Values
can be overridden with --set, --subgroup and --method.

Exit code 1 means the run lost population conservation; exit code 2 means
the scenario was invalid.`,
		Example: `  hetsird simulate scenarios/baseline.yaml
  hetsird simulate baseline.yaml --set rates.beta=0.4 --method rk4
  hetsird simulate baseline.yaml --subgroup name=elderly,share=0.2,death_factor=3 -o out.csv.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulateCommandE(cmd, args[0], opts)
		},
	}

	opts.scenario.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the trajectory as CSV (gzip when the path ends in .gz)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table, json or csv (default from project config)")
	cmd.Flags().IntVar(&opts.every, "every", 10, "Print every n-th sample in table format")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")

	return cmd
}

func simulateCommandE(cmd *cobra.Command, path string, opts *simulateOptions) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(opts.format, cfg.Output.Format, "table", "json", "csv")
	if err != nil {
		return err
	}

	sc, err := opts.scenario.load(path)
	if err != nil {
		return err
	}

	res, err := simulation.Run(cmd.Context(), sc, cfg.SimulationDefaults())
	if err != nil {
		return fmt.Errorf("simulating %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if err := writeJSON(out, res); err != nil {
			return err
		}
	case "csv":
		if err := dataset.WriteTrajectory(out, res.Trajectory); err != nil {
			return err
		}
	default:
		printResult(out, res)
		// R(t) is undefined without removal; the column is dropped then.
		rt, _ := analysis.ReproductionSeries(res.Trajectory)
		printTrajectory(out, res.Trajectory, opts.every, rt)
		printWarnings(out, res.Trajectory)
		if opts.interpret {
			printInterpretation(out, res)
		}
	}

	if opts.output != "" {
		dest := outputPath(opts.output, cfg)
		if err := dataset.SaveTrajectory(dest, res.Trajectory); err != nil {
			return fmt.Errorf("failed to save trajectory: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Trajectory saved to: %s\n", dest) //nolint:errcheck
	}
	return nil
}

// outputPath appends .gz when the project asks for compressed output.
func outputPath(path string, cfg *projectconfig.ProjectConfig) string {
	if cfg.Output.Gzip != nil && *cfg.Output.Gzip && !strings.HasSuffix(path, ".gz") {
		return path + ".gz"
	}
	return path
}
