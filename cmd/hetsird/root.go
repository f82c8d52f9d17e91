package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spboyer/hetsird/internal/projectconfig"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hetsird",
		Short: "hetsird - SIRD epidemic simulator for heterogeneous populations",
		Long: `hetsird simulates SIRD epidemics in populations split into subgroups
whose infection, recovery, death and relapse rates differ from a reference
group.

Scenarios are YAML files. Results can be printed, saved as CSV trajectories,
compared, swept over a parameter, rendered as reports or served over HTTP.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newSimulateCommand())
	cmd.AddCommand(newRatesCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newSweepCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCommandsCommand(cmd))

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}

// loadProjectConfig loads .hetsird.yaml relative to the working directory.
func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return projectconfig.Load(wd)
}
