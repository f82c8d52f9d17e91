package metadata

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree() *cobra.Command {
	root := &cobra.Command{Use: "tool", Version: "1.2.3"}

	run := &cobra.Command{
		Use:     "run <file>",
		Short:   "Run a file",
		Example: "  tool run a.yaml\n\n  tool run b.yaml --rate 0.3",
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	run.Flags().Float64("rate", 0.1, "Rate")
	run.Flags().StringArray("set", nil, "Override (can be repeated)")
	run.Flags().StringP("format", "f", "table", "Output format")
	run.Flags().String("param", "", "Parameter")
	_ = run.MarkFlagRequired("param")

	hidden := &cobra.Command{Use: "secret", Hidden: true, RunE: func(*cobra.Command, []string) error { return nil }}

	group := &cobra.Command{Use: "group", Short: "A group"}
	group.AddCommand(&cobra.Command{Use: "child", Short: "A child", RunE: func(*cobra.Command, []string) error { return nil }})

	root.AddCommand(run, hidden, group)
	return root
}

func TestDescribe(t *testing.T) {
	ref := Describe(newTestTree())

	assert.Equal(t, SchemaVersion, ref.SchemaVersion)
	assert.Equal(t, "tool", ref.Program)
	assert.Equal(t, "1.2.3", ref.Version)

	names := make(map[string]Command)
	for _, c := range ref.Commands {
		require.NotEmpty(t, c.Name)
		names[c.Name[0]] = c
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "group")
	assert.True(t, names["secret"].Hidden)
	assert.NotContains(t, names, "help")
}

func TestDescribe_Subcommands(t *testing.T) {
	ref := Describe(newTestTree())

	var group Command
	for _, c := range ref.Commands {
		if c.Name[0] == "group" {
			group = c
		}
	}
	require.Len(t, group.Subcommands, 1)
	assert.Equal(t, []string{"group", "child"}, group.Subcommands[0].Name)
}

func TestDescribe_FlagsAndExamples(t *testing.T) {
	ref := Describe(newTestTree())

	var run Command
	for _, c := range ref.Commands {
		if c.Name[0] == "run" {
			run = c
		}
	}
	assert.Equal(t, "tool run <file> [flags]", run.Usage)
	assert.Equal(t, []CommandExample{{Command: "tool run a.yaml"}, {Command: "tool run b.yaml --rate 0.3"}}, run.Examples)

	flags := make(map[string]Flag)
	for _, f := range run.Flags {
		flags[f.Name] = f
	}
	assert.Equal(t, "number", flags["rate"].Type)
	assert.Equal(t, "0.1", flags["rate"].Default)
	assert.Equal(t, "string", flags["set"].Type)
	assert.True(t, flags["set"].Repeatable)
	assert.Empty(t, flags["set"].Default)
	assert.Equal(t, "f", flags["format"].Shorthand)
	assert.False(t, flags["format"].Repeatable)
	assert.True(t, flags["param"].Required)
}
