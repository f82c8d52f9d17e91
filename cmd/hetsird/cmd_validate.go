package main

import (
	"fmt"
	"os"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var schemaOnly bool

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml> [scenario.yaml ...]",
		Short: "Validate scenario files",
		Long: `Validate scenario files without simulating them.

Each file is checked against the scenario JSON schema, then its rates,
subgroup shares and initial compartments are checked the way simulate would.
Use --schema-only to skip the second step.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				var issues []string
				if schemaOnly {
					issues = validation.ValidateScenarioBytes(data)
				} else {
					issues = validation.CheckScenario(data)
				}
				if len(issues) == 0 {
					fmt.Fprintf(out, "✓ %s\n", path) //nolint:errcheck
					continue
				}
				invalid++
				fmt.Fprintf(out, "✗ %s\n", path) //nolint:errcheck
				for _, issue := range issues {
					fmt.Fprintf(out, "    %s\n", issue) //nolint:errcheck
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d scenario files invalid: %w", invalid, len(args), models.ErrConfiguration)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "Only check the file against the JSON schema")

	return cmd
}
