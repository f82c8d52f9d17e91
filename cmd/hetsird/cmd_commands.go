package main

import (
	"github.com/spboyer/hetsird/internal/metadata"
	"github.com/spf13/cobra"
)

func newCommandsCommand(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "commands",
		Short:  "Output the command reference as JSON",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), metadata.Describe(rootCmd))
		},
	}
}
