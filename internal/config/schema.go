package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigsyaml "sigs.k8s.io/yaml"
)

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["site"],
  "properties": {
    "site": {
      "type": "object",
      "required": ["server", "siteCode"],
      "properties": {
        "server": {"type": "string", "minLength": 1},
        "siteCode": {"type": "string", "minLength": 3, "maxLength": 3},
        "baseUrl": {"type": "string"},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "allowSelfSigned": {"type": "boolean"},
        "timeoutSeconds": {"type": "integer", "minimum": 0}
      }
    },
    "logging": {
      "type": "object",
      "properties": {
        "level": {"enum": ["debug", "info", "warn", "error"]}
      }
    },
    "progress": {"type": "boolean"}
  }
}`

// ValidateYAML checks raw YAML content against a JSON schema. The YAML is
// converted to JSON first so the schema semantics apply unchanged.
func ValidateYAML(name, schema string, raw []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(raw)
	if err != nil {
		return fmt.Errorf("converting %s to JSON: %w", name, err)
	}

	compiled, err := jsonschema.CompileString(name+".schema.json", schema)
	if err != nil {
		return fmt.Errorf("compiling schema for %s: %w", name, err)
	}

	var value any
	if err := json.Unmarshal(jsonData, &value); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validating %s: %w", name, err)
	}
	return nil
}
