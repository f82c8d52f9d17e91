package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/reporting"
	"github.com/spboyer/hetsird/internal/simulation"
	"github.com/spboyer/hetsird/internal/sweep"
	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	var (
		opts    scenarioOptions
		title   string
		format  string
		output  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "report <scenario.yaml> [scenario.yaml ...]",
		Short: "Render a markdown or HTML report for one or more scenarios",
		Long: `Simulate every scenario and render a report with a summary table and a
section per scenario. The format follows the output file extension (.md or
.html) unless --format is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := format
			if f == "" {
				f = formatFromExtension(output)
			}
			if f != "markdown" && f != "html" {
				return fmt.Errorf("unsupported format %q: must be markdown or html", f)
			}

			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}

			scenarios := make([]*models.Scenario, 0, len(args))
			for _, path := range args {
				sc, err := opts.load(path)
				if err != nil {
					return err
				}
				scenarios = append(scenarios, sc)
			}

			if workers <= 0 {
				workers = cfg.Sweep.Workers
			}
			runner := sweep.NewRunner(sweep.WithWorkers(workers), sweep.WithDefaults(cfg.SimulationDefaults()))
			outcomes, err := runner.Run(cmd.Context(), scenarios)
			if err != nil {
				return err
			}
			results := make([]*simulation.Result, 0, len(outcomes))
			for _, o := range outcomes {
				if o.Err != nil {
					return fmt.Errorf("simulating %s: %w", args[o.Index], o.Err)
				}
				results = append(results, o.Result)
			}

			content := reporting.Markdown(title, results)
			if f == "html" {
				if content, err = reporting.HTML(title, content); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}
			if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", output) //nolint:errcheck
			return nil
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().StringVar(&title, "title", "Epidemic report", "Report title")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent runs (default from project config)")

	return cmd
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	}
	return "markdown"
}
