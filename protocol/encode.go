package protocol

import (
	"github.com/mvasek/switchboard/capability"
	"github.com/mvasek/switchboard/model"
)

// EncodeSpecs renders capability specs as the tool definitions a model
// request carries. Order follows the input so registration order is what the
// model sees.
func EncodeSpecs(specs []capability.Spec) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, len(specs))
	for i, spec := range specs {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.JSONSchema(),
			},
		}
	}
	return defs
}
