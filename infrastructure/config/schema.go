package config

import (
	"encoding/json"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// JSONSchema represents the subset of JSON Schema used to describe the config file.
type JSONSchema struct {
	Schema      string                 `json:"$schema,omitempty"`
	ID          string                 `json:"$id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Type        string                 `json:"type,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Default     any                    `json:"default,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty"`
	Format      string                 `json:"format,omitempty"`
}

// GenerateSchema generates a JSON Schema for PlannerConfig.
func GenerateSchema() *JSONSchema {
	algorithms := make([]string, 0, 2)
	for _, a := range search.Algorithms() {
		algorithms = append(algorithms, a.String())
	}

	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/gridplan/gridplan-config.schema.json",
		Title:       "Gridplan Configuration",
		Description: "Configuration schema for the gridplan vacuum-world planner",
		Type:        "object",
		Properties: map[string]*JSONSchema{
			"algorithm": {
				Type:        "string",
				Description: "Strategy used when none is given on the command line",
				Enum:        algorithms,
				Default:     "uniform-cost",
			},
			"output": {
				Type: "object",
				Properties: map[string]*JSONSchema{
					"format": {Type: "string", Enum: []string{"text", "json"}, Default: "text"},
				},
			},
			"logging": {
				Type:        "object",
				Description: "Diagnostic logging on stderr",
				Properties: map[string]*JSONSchema{
					"level":  {Type: "string", Enum: []string{"trace", "debug", "info", "warn", "error"}, Default: "warn"},
					"format": {Type: "string", Enum: []string{"console", "json"}, Default: "console"},
				},
			},
			"cache":     generateCacheSchema(),
			"history":   generateHistorySchema(),
			"telemetry": generateTelemetrySchema(),
		},
	}
}

func generateCacheSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Plan cache keyed by algorithm and world fingerprint",
		Properties: map[string]*JSONSchema{
			"backend": {
				Type:    "string",
				Enum:    []string{"none", "memory", "badger", "sqlite", "redis"},
				Default: "none",
			},
			"ttl":        {Type: "string", Format: "duration", Default: "1h"},
			"dir":        {Type: "string", Description: "Directory for badger and sqlite data"},
			"key_prefix": {Type: "string", Default: "gridplan:"},
			"max_size":   {Type: "integer", Minimum: floatPtr(0), Description: "Entry limit for the memory backend"},
			"redis": {
				Type: "object",
				Properties: map[string]*JSONSchema{
					"address":  {Type: "string", Default: "localhost:6379"},
					"password": {Type: "string"},
					"db":       {Type: "integer", Minimum: floatPtr(0)},
				},
			},
			"resilience": {
				Type:        "object",
				Description: "Retry and circuit breaking around remote backends",
				Properties: map[string]*JSONSchema{
					"max_attempts":      {Type: "integer", Minimum: floatPtr(0), Default: 3},
					"initial_delay":     {Type: "string", Format: "duration", Default: "50ms"},
					"failure_threshold": {Type: "integer", Minimum: floatPtr(0), Default: 5},
					"open_timeout":      {Type: "string", Format: "duration", Default: "30s"},
				},
			},
		},
	}
}

func generateHistorySchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Run history",
		Properties: map[string]*JSONSchema{
			"backend": {Type: "string", Enum: []string{"none", "memory", "sqlite"}, Default: "none"},
			"path":    {Type: "string", Description: "SQLite database file"},
		},
	}
}

func generateTelemetrySchema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]*JSONSchema{
			"metrics": {Type: "boolean", Default: false},
			"tracing": {
				Type: "object",
				Properties: map[string]*JSONSchema{
					"exporter":    {Type: "string", Enum: []string{"noop", "stdout", "otlp"}, Default: "noop"},
					"endpoint":    {Type: "string", Default: "localhost:4317"},
					"insecure":    {Type: "boolean", Default: true},
					"sample_rate": {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(1)},
				},
			},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// SchemaJSON returns the JSON Schema as an indented JSON string.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
