package constraint

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kontrakt-go/kontrakt/internal/typegraph"
)

var schemaCounter int64

// schemaDraft renders one typegraph.Param's annotations into a JSON Schema
// property fragment, used to compile a whole-object schema for the
// DataCompliance mode's structural check (§4.6) and for validating a
// Structural value's declared shape as a single jsonschema.Schema instead of
// a hand-rolled per-field walk.
func schemaDraft(props []typegraph.Param) map[string]any {
	properties := map[string]any{}
	var required []string
	for _, p := range props {
		frag := map[string]any{}
		switch p.Type.ValueKind {
		case typegraph.ValueInt, typegraph.ValueLong:
			frag["type"] = "integer"
		case typegraph.ValueDouble, typegraph.ValueDecimal:
			frag["type"] = "number"
		case typegraph.ValueBool:
			frag["type"] = "boolean"
		case typegraph.ValueString, typegraph.ValueUUID, typegraph.ValueTime:
			frag["type"] = "string"
		default:
			if p.Type.Kind == typegraph.KindContainer || p.Type.Kind == typegraph.KindArray {
				frag["type"] = "array"
			} else if p.Type.Kind == typegraph.KindMap || p.Type.Kind == typegraph.KindStructural {
				frag["type"] = "object"
			}
		}
		if attrs, ok := p.Annotations.GetAnnotationAttributes("StringLength"); ok {
			if min, err := strconv.Atoi(attrs["min"]); err == nil {
				frag["minLength"] = min
			}
			if max, err := strconv.Atoi(attrs["max"]); err == nil {
				frag["maxLength"] = max
			}
		}
		if attrs, ok := p.Annotations.GetAnnotationAttributes("Pattern"); ok {
			frag["pattern"] = attrs["regexp"]
		}
		if attrs, ok := p.Annotations.GetAnnotationAttributes("IntRange"); ok {
			if min, err := strconv.Atoi(attrs["min"]); err == nil {
				frag["minimum"] = min
			}
			if max, err := strconv.Atoi(attrs["max"]); err == nil {
				frag["maximum"] = max
			}
		}
		properties[p.Name] = frag
		if p.Annotations.HasAnnotation("NotNull") {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// CompileStructuralSchema compiles a JSON Schema for a Structural
// TypeDescriptor's declared properties, grounded on the teacher's
// compileSchema (internal/agent/tool_registry.go): marshal a schema
// document, register it under a unique resource name, compile.
func CompileStructuralSchema(props []typegraph.Param) (*jsonschema.Schema, error) {
	doc := schemaDraft(props)
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("kontrakt-schema-%d.json", atomic.AddInt64(&schemaCounter, 1))
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, strings.NewReader(string(b))); err != nil {
		return nil, err
	}
	return c.Compile(name)
}

// ValidateStructural marshals value to JSON and validates it against schema,
// translating a jsonschema.ValidationError into a DataContract AssertionRule
// violation message. Used by the DataCompliance executor's "structural
// requirements" check (spec §4.6).
func ValidateStructural(schema *jsonschema.Schema, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for schema validation: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode marshaled value: %w", err)
	}
	return schema.Validate(decoded)
}
