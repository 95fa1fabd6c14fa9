package bpx

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["Header", "Parameterisation"],
  "properties": {
    "Header": {
      "type": "object",
      "required": ["BPX"],
      "properties": {
        "Title": {"type": "string"},
        "Model": {"enum": ["SPM", "SPMe", "DFN"]}
      }
    },
    "Parameterisation": {
      "type": "object",
      "required": ["Cell", "Electrolyte", "Negative electrode", "Positive electrode", "Separator"],
      "properties": {
        "Cell": {"$ref": "#/$defs/section"},
        "Electrolyte": {"$ref": "#/$defs/section"},
        "Negative electrode": {"$ref": "#/$defs/electrode"},
        "Positive electrode": {"$ref": "#/$defs/electrode"},
        "Separator": {"$ref": "#/$defs/section"},
        "User-defined": {"type": "object"}
      }
    }
  },
  "$defs": {
    "table": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": {"type": "array", "items": {"type": "number"}, "minItems": 2},
        "y": {"type": "array", "items": {"type": "number"}, "minItems": 2}
      }
    },
    "value": {
      "anyOf": [{"type": "number"}, {"type": "string"}, {"$ref": "#/$defs/table"}]
    },
    "section": {
      "type": "object",
      "additionalProperties": {"$ref": "#/$defs/value"}
    },
    "electrode": {
      "type": "object",
      "required": ["Thickness [m]"],
      "properties": {
        "Particle": {
          "type": "object",
          "additionalProperties": {"$ref": "#/$defs/section"}
        }
      },
      "additionalProperties": {"$ref": "#/$defs/value"}
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compileSchema(src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("bpx.json", strings.NewReader(src)); err != nil {
		return nil, err
	}
	return compiler.Compile("bpx.json")
}

func documentValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCompiled, schemaErr = compileSchema(documentSchema)
	})
	return schemaCompiled, schemaErr
}

// ValidateDocument checks the shape of a BPX document. The version number is
// not checked and expression strings are not evaluated.
func ValidateDocument(raw []byte) error {
	schema, err := documentValidator()
	if err != nil {
		return fmt.Errorf("bpx schema compile failed: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("bpx schema: %w", err)
	}
	return nil
}
