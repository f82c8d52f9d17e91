package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/projectconfig"
	"github.com/spboyer/hetsird/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		interactive bool
		dir         string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a project with a starter scenario",
		Long: `Create a .hetsird.yaml project file and a starter scenario.

The scenario is written to <scenarios dir>/<name>.yaml and describes a plain
SIR epidemic in a population of 1000 with one infectious case. Use
--interactive to build the scenario with a guided form instead.

An existing .hetsird.yaml is left untouched. An existing scenario file is
only replaced with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "baseline"
			if len(args) > 0 {
				name = args[0]
			}
			return initCommandE(cmd, dir, name, interactive, force)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Build the scenario with a guided form")
	cmd.Flags().StringVar(&dir, "dir", ".", "Project directory")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing scenario file")

	return cmd
}

func initCommandE(cmd *cobra.Command, dir, name string, interactive, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg := projectconfig.New()
	cfgPath := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", projectconfig.FileName, err)
		}
		if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfgPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", cfgPath) //nolint:errcheck
	} else if err != nil {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	} else if loaded, err := projectconfig.Load(dir); err == nil {
		cfg = loaded
	}

	var sc *models.Scenario
	var err error
	if interactive {
		sc, err = wizard.RunScenarioWizard(cmd.InOrStdin(), cmd.OutOrStdout(), name)
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
	} else {
		sc, err = wizard.BuildScenario(wizard.DefaultAnswers(name))
		if err != nil {
			return err
		}
	}

	content, err := wizard.RenderScenarioYAML(sc)
	if err != nil {
		return err
	}

	scenarioDir := filepath.Join(dir, cfg.Paths.Scenarios)
	if err := os.MkdirAll(scenarioDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", scenarioDir, err)
	}
	path := filepath.Join(scenarioDir, sanitizeFileName(sc.Name)+".yaml")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path) //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "\nNext: hetsird simulate %s\n", path) //nolint:errcheck
	return nil
}
