package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a complete simulation input, usually loaded from a YAML file.
type Scenario struct {
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Population  float64          `yaml:"population,omitempty" json:"population,omitempty"`
	Initial     CompartmentState `yaml:"initial" json:"initial"`
	Rates       RateSet          `yaml:"rates" json:"rates"`
	Subgroups   []SubgroupSpec   `yaml:"subgroups,omitempty" json:"subgroups,omitempty"`
	Time        TimeConfig       `yaml:"time" json:"time"`
	Solver      SolverConfig     `yaml:"solver,omitempty" json:"solver,omitempty"`
}

// SubgroupSpec is the file representation of a [Subgroup]. Omitted factors
// default to 1. RecoveryDelay is an alternative to RecoveryFactor: a delay
// of d means the subgroup recovers at 1/d times the reference rate.
type SubgroupSpec struct {
	Name            string   `yaml:"name,omitempty" json:"name,omitempty"`
	Share           float64  `yaml:"share" json:"share"`
	InfectionFactor *float64 `yaml:"infection_factor,omitempty" json:"infection_factor,omitempty"`
	RecoveryFactor  *float64 `yaml:"recovery_factor,omitempty" json:"recovery_factor,omitempty"`
	RecoveryDelay   *float64 `yaml:"recovery_delay,omitempty" json:"recovery_delay,omitempty"`
	DeathFactor     *float64 `yaml:"death_factor,omitempty" json:"death_factor,omitempty"`
	RelapseFactor   *float64 `yaml:"relapse_factor,omitempty" json:"relapse_factor,omitempty"`
}

// TimeConfig is the simulated horizon and output step.
type TimeConfig struct {
	Horizon float64 `yaml:"horizon" json:"horizon"`
	Step    float64 `yaml:"step" json:"step"`
}

// SolverConfig selects the integration method and its tolerances. Zero
// values mean "use the default".
type SolverConfig struct {
	Method                string  `yaml:"method,omitempty" json:"method,omitempty"`
	RelTol                float64 `yaml:"rtol,omitempty" json:"rtol,omitempty"`
	AbsTol                float64 `yaml:"atol,omitempty" json:"atol,omitempty"`
	NonNegativeTolerance  float64 `yaml:"nonnegative_tolerance,omitempty" json:"nonnegative_tolerance,omitempty"`
	ConservationTolerance float64 `yaml:"conservation_tolerance,omitempty" json:"conservation_tolerance,omitempty"`
	MaxSteps              int     `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates YAML scenario bytes. Unknown keys are
// rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// DecodeScenarioJSON decodes and validates a JSON scenario.
func DecodeScenarioJSON(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the structure of the scenario. Numeric constraints on
// rates, shares and compartments are enforced by the rate model and the
// integrator.
func (s *Scenario) Validate() error {
	if s.Time.Horizon <= 0 {
		return Configf("time.horizon", "must be > 0, got %g", s.Time.Horizon)
	}
	if s.Time.Step <= 0 {
		return Configf("time.step", "must be > 0, got %g", s.Time.Step)
	}
	if s.Population < 0 {
		return Configf("population", "must be >= 0, got %g", s.Population)
	}
	seen := make(map[string]bool, len(s.Subgroups))
	for i, g := range s.Subgroups {
		field := fmt.Sprintf("subgroups[%d]", i)
		if g.Name != "" {
			if seen[g.Name] {
				return Configf(field+".name", "duplicate subgroup name %q", g.Name)
			}
			seen[g.Name] = true
		}
		if g.RecoveryFactor != nil && g.RecoveryDelay != nil {
			return Configf(field, "recovery_factor and recovery_delay are mutually exclusive")
		}
		if g.RecoveryDelay != nil && *g.RecoveryDelay <= 0 {
			return Configf(field+".recovery_delay", "must be > 0, got %g", *g.RecoveryDelay)
		}
	}
	return nil
}

// SubgroupList converts the file representation into rate-model subgroups,
// in file order.
func (s *Scenario) SubgroupList() []Subgroup {
	out := make([]Subgroup, 0, len(s.Subgroups))
	for _, g := range s.Subgroups {
		sg := NewSubgroup(g.Name, g.Share)
		if g.InfectionFactor != nil {
			sg.InfectionFactor = *g.InfectionFactor
		}
		if g.RecoveryFactor != nil {
			sg.RecoveryFactor = *g.RecoveryFactor
		}
		if g.RecoveryDelay != nil {
			sg.RecoveryFactor = 1 / *g.RecoveryDelay
		}
		if g.DeathFactor != nil {
			sg.DeathFactor = *g.DeathFactor
		}
		if g.RelapseFactor != nil {
			sg.RelapseFactor = *g.RelapseFactor
		}
		out = append(out, sg)
	}
	return out
}

// Clone returns a copy that can be modified without affecting s.
func (s *Scenario) Clone() *Scenario {
	c := *s
	if s.Subgroups != nil {
		c.Subgroups = make([]SubgroupSpec, len(s.Subgroups))
		copy(c.Subgroups, s.Subgroups)
	}
	return &c
}

// Float64 returns a pointer to v, for building SubgroupSpec values.
func Float64(v float64) *float64 {
	return &v
}
