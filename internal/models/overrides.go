package models

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ParseOverrides turns "section.key=value" arguments into a nested map
// suitable for [ApplyOverrides].
func ParseOverrides(args []string) (map[string]any, error) {
	out := map[string]any{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("override %q must have the form key=value", arg)
		}
		if err := setPath(out, strings.Split(key, "."), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("override %q: %w", arg, err)
		}
	}
	return out, nil
}

func setPath(m map[string]any, path []string, value string) error {
	if path[0] == "" {
		return fmt.Errorf("empty key segment")
	}
	if path[0] == "subgroups" {
		return fmt.Errorf("subgroups cannot be overridden, edit the scenario file instead")
	}
	if len(path) == 1 {
		if _, exists := m[path[0]]; exists {
			return fmt.Errorf("key %q set twice", path[0])
		}
		m[path[0]] = value
		return nil
	}
	child, ok := m[path[0]]
	if !ok {
		child = map[string]any{}
		m[path[0]] = child
	}
	childMap, ok := child.(map[string]any)
	if !ok {
		return fmt.Errorf("key %q is both a value and a section", path[0])
	}
	return setPath(childMap, path[1:], value)
}

// ApplyOverrides decodes values onto the scenario in place and re-validates
// it. Keys follow the YAML field names; unknown keys are rejected.
func ApplyOverrides(s *Scenario, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           s,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	return s.Validate()
}
