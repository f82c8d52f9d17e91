package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spboyer/hetsird/internal/integrator"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spf13/pflag"
)

// subgroupList collects repeated --subgroup flags.
type subgroupList []models.SubgroupSpec

var _ pflag.Value = (*subgroupList)(nil)

func (l *subgroupList) String() string {
	parts := make([]string, len(*l))
	for i, g := range *l {
		parts[i] = g.String()
	}
	return strings.Join(parts, "; ")
}

func (l *subgroupList) Set(s string) error {
	g, err := models.ParseSubgroupSpec(s)
	if err != nil {
		return err
	}
	*l = append(*l, g)
	return nil
}

func (l *subgroupList) Type() string {
	return "subgroup"
}

// scenarioOptions are the flags shared by every command that loads a
// scenario file.
type scenarioOptions struct {
	sets      []string
	subgroups subgroupList
	method    string
}

func (o *scenarioOptions) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&o.sets, "set", nil, "Override a scenario value, e.g. rates.beta=0.4 (can be repeated)")
	fs.Var(&o.subgroups, "subgroup", "Replace the scenario's subgroups, e.g. name=elderly,share=0.2,death_factor=3 (can be repeated)")
	fs.StringVarP(&o.method, "method", "m", "", fmt.Sprintf("Integration method %v (overrides the scenario)", integrator.Methods()))
}

// load reads a scenario file and applies the overrides.
func (o *scenarioOptions) load(path string) (*models.Scenario, error) {
	sc, err := models.LoadScenario(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	if err := o.apply(sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func (o *scenarioOptions) apply(sc *models.Scenario) error {
	values, err := models.ParseOverrides(o.sets)
	if err != nil {
		return err
	}
	if err := models.ApplyOverrides(sc, values); err != nil {
		return err
	}
	if len(o.subgroups) > 0 {
		sc.Subgroups = append([]models.SubgroupSpec(nil), o.subgroups...)
	}
	if o.method != "" {
		m, err := integrator.ParseMethod(o.method)
		if err != nil {
			return models.Configf("method", "%v", err)
		}
		sc.Solver.Method = string(m)
	}
	return sc.Validate()
}

// resolveFormat picks the flag value, then the project setting, then table.
// A project setting the command does not support falls back to table.
func resolveFormat(flag, project string, allowed ...string) (string, error) {
	if flag == "" {
		if slices.Contains(allowed, project) {
			return project, nil
		}
		return "table", nil
	}
	if !slices.Contains(allowed, flag) {
		return "", fmt.Errorf("unsupported format %q: must be one of %s", flag, strings.Join(allowed, ", "))
	}
	return flag, nil
}
