package protocol

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mvasek/switchboard/capability"
	"github.com/mvasek/switchboard/internal/util"
)

// ValidateArguments checks decoded tool-call arguments against a capability
// spec and returns the sanitized argument map. Arguments not declared in the
// spec's Params are silently dropped; missing required arguments and type
// mismatches fail with capability.ErrInvalidArguments. When compiled is
// non-nil the capability's raw schema is enforced instead of Params.
func ValidateArguments(spec capability.Spec, compiled *jsonschema.Schema, args map[string]any) (map[string]any, error) {
	if compiled != nil {
		if err := compiled.Validate(toJSONValue(args)); err != nil {
			return nil, fmt.Errorf("%w: capability %q: %v", capability.ErrInvalidArguments, spec.Name, err)
		}
		return args, nil
	}

	sanitized := make(map[string]any, len(args))
	for name, p := range spec.Params {
		value, present := args[name]
		if !present {
			if p.Required {
				return nil, fmt.Errorf("%w: capability %q: missing required argument %q",
					capability.ErrInvalidArguments, spec.Name, name)
			}
			continue
		}
		if !util.IsValidType(value, p.Type) {
			return nil, fmt.Errorf("%w: capability %q: argument %q is not of type %s",
				capability.ErrInvalidArguments, spec.Name, name, p.Type)
		}
		sanitized[name] = value
	}

	return sanitized, nil
}

// toJSONValue normalizes an argument map for schema validation. Decoded JSON
// is already in the interface shapes the validator expects; nil maps become
// empty objects.
func toJSONValue(args map[string]any) any {
	if args == nil {
		return map[string]any{}
	}
	return args
}
