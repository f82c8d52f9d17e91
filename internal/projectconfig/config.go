// Package projectconfig provides the ProjectConfig struct and loader for
// .hetsird.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spboyer/hetsird/internal/simulation"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".hetsird.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultScenariosDir = "scenarios/"
	DefaultOutputDir    = "results/"

	DefaultMethod = "rk45"
	DefaultFormat = "table"

	DefaultWorkers = 4

	DefaultServerPort = 3000
)

// PathsConfig holds directory paths for scenarios and results.
type PathsConfig struct {
	Scenarios string `yaml:"scenarios,omitempty"`
	Output    string `yaml:"output,omitempty"`
}

// SolverConfig holds solver defaults applied where a scenario is silent.
type SolverConfig struct {
	Method string  `yaml:"method,omitempty"`
	RelTol float64 `yaml:"rtol,omitempty"`
	AbsTol float64 `yaml:"atol,omitempty"`
}

// OutputConfig holds result formatting settings.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
	Gzip   *bool  `yaml:"gzip,omitempty"`
}

// SweepConfig holds parallel sweep settings.
type SweepConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .hetsird.yaml.
type ProjectConfig struct {
	Paths  PathsConfig  `yaml:"paths,omitempty"`
	Solver SolverConfig `yaml:"solver,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`
	Sweep  SweepConfig  `yaml:"sweep,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
}

// envOverrides holds values read from HETSIRD_* environment variables.
type envOverrides struct {
	Method         string   `env:"HETSIRD_METHOD"`
	Workers        int      `env:"HETSIRD_WORKERS"`
	Format         string   `env:"HETSIRD_FORMAT"`
	Port           int      `env:"HETSIRD_SERVER_PORT"`
	AllowedOrigins []string `env:"HETSIRD_ALLOWED_ORIGINS" envSeparator:","`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Scenarios: DefaultScenariosDir,
			Output:    DefaultOutputDir,
		},
		Solver: SolverConfig{
			Method: DefaultMethod,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
			Gzip:   boolPtr(false),
		},
		Sweep: SweepConfig{
			Workers: DefaultWorkers,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
	}
}

// Load finds .hetsird.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults and finally applies
// HETSIRD_* environment overrides.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SimulationDefaults returns the solver settings in the form the
// simulation package expects.
func (c *ProjectConfig) SimulationDefaults() simulation.Defaults {
	return simulation.Defaults{
		Method: c.Solver.Method,
		RelTol: c.Solver.RelTol,
		AbsTol: c.Solver.AbsTol,
	}
}

// findConfigFile walks up from dir looking for .hetsird.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Scenarios != "" {
		dst.Paths.Scenarios = src.Paths.Scenarios
	}
	if src.Paths.Output != "" {
		dst.Paths.Output = src.Paths.Output
	}

	// Solver
	if src.Solver.Method != "" {
		dst.Solver.Method = src.Solver.Method
	}
	if src.Solver.RelTol != 0 {
		dst.Solver.RelTol = src.Solver.RelTol
	}
	if src.Solver.AbsTol != 0 {
		dst.Solver.AbsTol = src.Solver.AbsTol
	}

	// Output
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if src.Output.Gzip != nil {
		dst.Output.Gzip = src.Output.Gzip
	}

	// Sweep
	if src.Sweep.Workers != 0 {
		dst.Sweep.Workers = src.Sweep.Workers
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
}

func applyEnv(cfg *ProjectConfig) error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if e.Method != "" {
		cfg.Solver.Method = e.Method
	}
	if e.Workers != 0 {
		cfg.Sweep.Workers = e.Workers
	}
	if e.Format != "" {
		cfg.Output.Format = e.Format
	}
	if e.Port != 0 {
		cfg.Server.Port = e.Port
	}
	if len(e.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = e.AllowedOrigins
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
