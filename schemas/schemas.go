// Package schemas embeds the JSON Schemas for hetsird input files.
package schemas

import _ "embed"

// ScenarioSchemaJSON is the JSON Schema for scenario YAML files.
//
//go:embed scenario.schema.json
var ScenarioSchemaJSON string
