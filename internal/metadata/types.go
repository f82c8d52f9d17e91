// Package metadata describes a Cobra command tree as JSON-serializable data,
// used to generate CLI reference docs and shell tooling.
package metadata

// Reference is the complete description of a CLI.
type Reference struct {
	SchemaVersion string    `json:"schemaVersion"`
	Program       string    `json:"program"`
	Version       string    `json:"version,omitempty"`
	Commands      []Command `json:"commands"`
}

// Command represents a command or subcommand in the command tree.
type Command struct {
	Name        []string         `json:"name"`
	Short       string           `json:"short"`
	Long        string           `json:"long,omitempty"`
	Usage       string           `json:"usage,omitempty"`
	Examples    []CommandExample `json:"examples,omitempty"`
	Flags       []Flag           `json:"flags,omitempty"`
	Subcommands []Command        `json:"subcommands,omitempty"`
	Hidden      bool             `json:"hidden,omitempty"`
	Aliases     []string         `json:"aliases,omitempty"`
	Deprecated  string           `json:"deprecated,omitempty"`
}

// CommandExample is one line of a command's Example text.
type CommandExample struct {
	Command string `json:"command"`
}

// Flag represents a command-line flag.
type Flag struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Repeatable  bool   `json:"repeatable,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Deprecated  string `json:"deprecated,omitempty"`
}
