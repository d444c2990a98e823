package capability

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mvasek/switchboard/internal/util"
)

// Param describes a single argument accepted by a capability.
type Param struct {
	// Type is the JSON Schema primitive type of the argument
	// ("string", "integer", "number", "boolean", "array", "object").
	Type string

	// Description explains the argument to the reasoning model.
	Description string

	// Required marks arguments that must be present in every call.
	Required bool
}

// Spec is the self-description a capability publishes to the registry. The
// orchestrator forwards it verbatim to the reasoning model so the model can
// decide when and how to call the capability.
type Spec struct {
	// Name uniquely identifies the capability within a registry. The model
	// refers to capabilities by this name in tool calls.
	Name string

	// Description tells the model what the capability does and when to use it.
	Description string

	// Params maps argument names to their declarations. Used to render the
	// JSON Schema sent to the model and to validate decoded arguments.
	Params map[string]Param

	// Idempotent declares that repeating an invocation with the same
	// arguments is safe. Only idempotent capabilities are retried after
	// transient failures.
	Idempotent bool

	// Timeout overrides the invoker's default per-call deadline when
	// positive. Zero means use the default.
	Timeout time.Duration

	// RawSchema optionally carries a complete JSON Schema document for the
	// arguments. When set it takes precedence over Params for both model
	// guidance and validation, and is compiled at registration time.
	RawSchema json.RawMessage
}

// Validate checks that the spec is well formed enough to register.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("capability spec: name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("capability %q: description is required", s.Name)
	}
	for name, p := range s.Params {
		switch p.Type {
		case "string", "integer", "number", "boolean", "array", "object":
		default:
			return fmt.Errorf("capability %q: param %q has unsupported type %q", s.Name, name, p.Type)
		}
	}
	return nil
}

// JSONSchema renders the argument schema as a JSON Schema object suitable for
// a tool definition. RawSchema wins when present; otherwise the schema is
// built from Params.
func (s Spec) JSONSchema() map[string]any {
	if len(s.RawSchema) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(s.RawSchema, &schema); err == nil {
			return schema
		}
	}

	properties := make(map[string]any, len(s.Params))
	required := make([]string, 0, len(s.Params))
	for name, p := range s.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[name] = prop
		if p.Required {
			required = append(required, name)
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

// StructParams derives a Param map from a struct type's json and description
// tags. Fields without omitempty and with non-pointer types are required.
func StructParams(v any) map[string]Param {
	schema := util.CreateSchema(v)

	params := make(map[string]Param)
	properties, _ := schema["properties"].(map[string]any)
	required := map[string]bool{}
	if names, ok := schema["required"].([]string); ok {
		for _, n := range names {
			required[n] = true
		}
	}
	for name, raw := range properties {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p := Param{Required: required[name]}
		if t, ok := prop["type"].(string); ok {
			p.Type = t
		}
		if d, ok := prop["description"].(string); ok {
			p.Description = d
		}
		params[name] = p
	}
	return params
}
