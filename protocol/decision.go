package protocol

import (
	"encoding/json"

	"github.com/mvasek/switchboard/core"
	"github.com/mvasek/switchboard/model"
)

// Decision is the classified outcome of one reasoning step. The set of
// implementations is closed: FinalAnswer, ToolCallRequest and ParseFailure.
type Decision interface {
	isDecision()
}

// FinalAnswer is the model answering the user directly, ending the cycle.
type FinalAnswer struct {
	Text string
}

func (FinalAnswer) isDecision() {}

// ToolCallRequest is the model delegating to a named capability. Args holds
// the decoded argument object; Raw preserves the undecoded payload for
// logging and history.
type ToolCallRequest struct {
	CallID string
	Name   string
	Args   map[string]any
	Raw    json.RawMessage
}

func (ToolCallRequest) isDecision() {}

// ParseFailure records model output that could not be classified as either a
// usable answer or a well-formed tool call. Raw carries whatever text the
// model produced so the caller can degrade to returning it verbatim.
type ParseFailure struct {
	Reason string
	Raw    string
}

func (ParseFailure) isDecision() {}

// Parse classifies a completed model response. A structured tool call takes
// precedence over accompanying text; a tool call whose arguments are not a
// JSON object degrades to ParseFailure rather than an error.
func Parse(resp *model.Response) Decision {
	if resp == nil {
		return ParseFailure{Reason: "empty response"}
	}

	if len(resp.ToolCalls) > 0 {
		tc := resp.ToolCalls[0]
		if tc.Name == "" {
			return ParseFailure{Reason: "tool call without a name", Raw: resp.Text}
		}

		args := map[string]any{}
		if len(tc.Arguments) > 0 {
			if err := json.Unmarshal(tc.Arguments, &args); err != nil {
				return ParseFailure{
					Reason: "tool call arguments are not a JSON object",
					Raw:    string(tc.Arguments),
				}
			}
		}

		callID := tc.ID
		if callID == "" {
			callID = core.NewID()
		}

		return ToolCallRequest{
			CallID: callID,
			Name:   tc.Name,
			Args:   args,
			Raw:    tc.Arguments,
		}
	}

	if resp.Text == "" {
		return ParseFailure{Reason: "response carries neither text nor tool calls"}
	}

	return FinalAnswer{Text: resp.Text}
}
