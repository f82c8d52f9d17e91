package metadata

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SchemaVersion is the version of the Reference JSON layout.
const SchemaVersion = "1.0"

// Describe builds a Reference from a Cobra root command.
func Describe(root *cobra.Command) *Reference {
	return &Reference{
		SchemaVersion: SchemaVersion,
		Program:       root.Name(),
		Version:       root.Version,
		Commands:      generateCommands(root),
	}
}

func generateCommands(cmd *cobra.Command) []Command {
	var commands []Command
	for _, subCmd := range cmd.Commands() {
		// Cobra's own help and completion commands.
		if subCmd.Name() == "help" || subCmd.Name() == "completion" {
			continue
		}
		commands = append(commands, generateCommand(subCmd))
	}
	return commands
}

func generateCommand(cmd *cobra.Command) Command {
	command := Command{
		Name:       commandPath(cmd),
		Short:      cmd.Short,
		Long:       cmd.Long,
		Usage:      cmd.UseLine(),
		Examples:   generateExamples(cmd),
		Flags:      generateFlags(cmd),
		Hidden:     cmd.Hidden,
		Aliases:    cmd.Aliases,
		Deprecated: cmd.Deprecated,
	}
	if cmd.HasSubCommands() {
		command.Subcommands = generateCommands(cmd)
	}
	return command
}

// commandPath returns the command's path below the root, e.g. ["simulate"].
func commandPath(cmd *cobra.Command) []string {
	var path []string
	for c := cmd; c.HasParent(); c = c.Parent() {
		path = append([]string{c.Name()}, path...)
	}
	return path
}

func generateExamples(cmd *cobra.Command) []CommandExample {
	var examples []CommandExample
	for _, line := range strings.Split(cmd.Example, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			examples = append(examples, CommandExample{Command: line})
		}
	}
	return examples
}

func generateFlags(cmd *cobra.Command) []Flag {
	var flags []Flag
	cmd.LocalFlags().VisitAll(func(flag *pflag.Flag) {
		typ, repeatable := flagType(flag)
		f := Flag{
			Name:        flag.Name,
			Shorthand:   flag.Shorthand,
			Description: flag.Usage,
			Type:        typ,
			Default:     flag.DefValue,
			Repeatable:  repeatable,
			Hidden:      flag.Hidden,
			Deprecated:  flag.Deprecated,
		}
		if ann := flag.Annotations[cobra.BashCompOneRequiredFlag]; len(ann) > 0 && ann[0] == "true" {
			f.Required = true
		}
		if f.Default == "[]" {
			f.Default = ""
		}
		flags = append(flags, f)
	})
	return flags
}

// flagType maps a pflag value type to a JSON-friendly type name and reports
// whether the flag may be given more than once.
func flagType(flag *pflag.Flag) (string, bool) {
	switch t := flag.Value.Type(); t {
	case "bool":
		return "bool", false
	case "int", "int32", "int64":
		return "int", false
	case "float64", "float32":
		return "number", false
	case "string":
		return "string", false
	case "stringSlice", "stringArray":
		return "string", true
	case "float64Slice":
		return "number", true
	default:
		// Custom values such as subgroup specs accumulate.
		_, isSlice := flag.Value.(pflag.SliceValue)
		return t, isSlice || strings.HasSuffix(flag.Usage, "(can be repeated)")
	}
}
