package models

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ParseSubgroupSpec parses the compact form used on the command line and in
// the scenario wizard:
//
//	name=high-risk,share=0.2,infection_factor=2
//
// Keys are the YAML field names of [SubgroupSpec].
func ParseSubgroupSpec(s string) (SubgroupSpec, error) {
	values := map[string]any{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return SubgroupSpec{}, fmt.Errorf("subgroup %q: %q must have the form key=value", s, part)
		}
		if _, dup := values[key]; dup {
			return SubgroupSpec{}, fmt.Errorf("subgroup %q: key %q set twice", s, key)
		}
		values[key] = strings.TrimSpace(value)
	}
	if _, ok := values["share"]; !ok {
		return SubgroupSpec{}, fmt.Errorf("subgroup %q: share is required", s)
	}

	var spec SubgroupSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &spec,
	})
	if err != nil {
		return SubgroupSpec{}, err
	}
	if err := dec.Decode(values); err != nil {
		return SubgroupSpec{}, fmt.Errorf("subgroup %q: %w", s, err)
	}
	if spec.RecoveryFactor != nil && spec.RecoveryDelay != nil {
		return SubgroupSpec{}, fmt.Errorf("subgroup %q: recovery_factor and recovery_delay are mutually exclusive", s)
	}
	return spec, nil
}

// String renders the spec in the form accepted by ParseSubgroupSpec.
func (g SubgroupSpec) String() string {
	var parts []string
	if g.Name != "" {
		parts = append(parts, "name="+g.Name)
	}
	parts = append(parts, fmt.Sprintf("share=%g", g.Share))
	for _, f := range []struct {
		key string
		v   *float64
	}{
		{"infection_factor", g.InfectionFactor},
		{"recovery_factor", g.RecoveryFactor},
		{"recovery_delay", g.RecoveryDelay},
		{"death_factor", g.DeathFactor},
		{"relapse_factor", g.RelapseFactor},
	} {
		if f.v != nil {
			parts = append(parts, fmt.Sprintf("%s=%g", f.key, *f.v))
		}
	}
	return strings.Join(parts, ",")
}
