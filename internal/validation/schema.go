// Package validation checks scenario files against the embedded JSON Schema
// and against the rules of the rate model.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/hetsird/internal/integrator"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/rates"
	"github.com/spboyer/hetsird/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// scenarioSchema is the compiled JSON Schema for scenario files.
var scenarioSchema = mustCompileSchema(schemas.ScenarioSchemaJSON, "scenario.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateScenarioFile reads path and returns every problem found by
// [CheckScenario]. The error is only set when the file cannot be read.
func ValidateScenarioFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return CheckScenario(data), nil
}

// ValidateScenarioBytes validates raw YAML bytes against the scenario schema.
func ValidateScenarioBytes(data []byte) []string {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	return validateAgainstSchema(scenarioSchema, convertToJSONCompatible(doc))
}

// CheckScenario runs the schema check and, when it passes, the semantic
// checks the schema cannot express: subgroup shares adding up to one and
// the initial compartments matching the stated population.
func CheckScenario(data []byte) []string {
	if errs := ValidateScenarioBytes(data); len(errs) > 0 {
		return errs
	}

	sc, err := models.ParseScenario(data)
	if err != nil {
		return []string{describe(err)}
	}
	if err := rates.Validate(sc.Rates, rates.ReferenceShare(sc.SubgroupList()), sc.SubgroupList()); err != nil {
		return []string{describe(err)}
	}
	if sc.Population > 0 {
		total := sc.Initial.Total()
		if math.Abs(total-sc.Population) > integrator.PopulationTolerance*math.Max(sc.Population, 1) {
			return []string{defaultPrinter.Sprintf("/initial: compartments sum to %v, population is %v", total, sc.Population)}
		}
	}
	return nil
}

// describe renders configuration errors in the same "/path: message" form
// as schema errors.
func describe(err error) string {
	var cfgErr *models.ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.Field != "" {
		return fmt.Sprintf("/%s: %s", fieldPointer(cfgErr.Field), cfgErr.Reason)
	}
	return err.Error()
}

// fieldPointer turns "subgroups[1].share" into "subgroups/1/share".
func fieldPointer(field string) string {
	r := strings.NewReplacer("[", "/", "]", "", ".", "/")
	return r.Replace(field)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible converts YAML-decoded values to JSON-compatible types.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
