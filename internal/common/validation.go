package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema constrains the decoded configuration. Durations are checked as
// nanosecond integers because that is how time.Duration marshals.
func configSchema() map[string]any {
	str := func(minLen int) map[string]any {
		return map[string]any{"type": "string", "minLength": minLen}
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"server", "workspace", "compiler", "jobs", "log"},
		"properties": map[string]any{
			"server": map[string]any{
				"type":     "object",
				"required": []string{"grpc_addr"},
				"properties": map[string]any{
					"grpc_addr": map[string]any{"type": "string", "pattern": `^[^\s]*:\d{1,5}$`},
					"http_addr": map[string]any{"type": "string", "pattern": `^([^\s]*:\d{1,5})?$`},
				},
			},
			"workspace": map[string]any{
				"type":     "object",
				"required": []string{"scratch_root"},
				"properties": map[string]any{
					"scratch_root": str(1),
					"sweep_after":  map[string]any{"type": "integer", "minimum": 0},
				},
			},
			"compiler": map[string]any{
				"type":     "object",
				"required": []string{"path"},
				"properties": map[string]any{
					"path":              str(1),
					"relay_diagnostics": map[string]any{"type": "boolean"},
				},
			},
			"jobs": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"chunk_buffer":       map[string]any{"type": "integer", "minimum": 1, "maximum": 65536},
					"kill_on_disconnect": map[string]any{"type": "boolean"},
				},
			},
			"log": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"level":  map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error"}},
					"format": map[string]any{"type": "string", "enum": []string{"text", "json"}},
				},
			},
		},
	}
}

func validateAgainstSchema(cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return ValidateJSONAgainstSchema(configSchema(), data)
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
