package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Turn within a session.
type Role string

const (
	// RoleUser marks a turn containing raw end-user input.
	RoleUser Role = "user"
	// RoleModel marks a turn produced by the reasoning model (a direct
	// answer or a tool-call intent).
	RoleModel Role = "model"
	// RoleTool marks a turn carrying the result of a delegate invocation.
	RoleTool Role = "tool"
)

// ToolCallMeta records the tool-call intent attached to a model turn.
type ToolCallMeta struct {
	CallID    string `json:"call_id"`             // Correlates call and result
	Name      string `json:"name"`                // Registered capability name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// ToolResultMeta records the delegation outcome attached to a tool turn.
// Outcome holds the string form of an invoker classification (e.g. "success",
// "timeout") so the reasoning model can react to failed delegations.
type ToolResultMeta struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Payload string `json:"payload,omitempty"`
}

// Turn is one step of a conversation. After being appended to a Session it
// should be treated as immutable. Content carries the human-readable text;
// ToolCall / ToolResult carry structured delegation metadata when present.
type Turn struct {
	ID         string          `json:"id"`
	Role       Role            `json:"role"`
	Content    string          `json:"content"`
	ToolCall   *ToolCallMeta   `json:"tool_call,omitempty"`
	ToolResult *ToolResultMeta `json:"tool_result,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewTurn creates a bare turn with a fresh ID and UTC timestamp. Prefer the
// role-specific constructors for common cases.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserTurn creates a user-authored text turn.
func NewUserTurn(content string) Turn {
	return NewTurn(RoleUser, content)
}

// NewModelTurn creates a model-authored direct-answer turn.
func NewModelTurn(content string) Turn {
	return NewTurn(RoleModel, content)
}

// NewToolCallTurn creates a model-authored turn requesting execution of a
// named capability with serialized arguments.
func NewToolCallTurn(callID, name, arguments string) Turn {
	t := NewTurn(RoleModel, "")
	t.ToolCall = &ToolCallMeta{CallID: callID, Name: name, Arguments: arguments}
	return t
}

// NewToolResultTurn records the completion result of a delegate invocation.
// Content duplicates the payload (or diagnostic) as plain text for models
// that consume flattened histories.
func NewToolResultTurn(callID, name, outcome, payload string) Turn {
	t := NewTurn(RoleTool, payload)
	t.ToolResult = &ToolResultMeta{CallID: callID, Name: name, Outcome: outcome, Payload: payload}
	return t
}

// IsToolCall reports whether the turn carries a tool-call intent.
func (t Turn) IsToolCall() bool { return t.ToolCall != nil }

// IsToolResult reports whether the turn carries a delegation result.
func (t Turn) IsToolResult() bool { return t.ToolResult != nil }

// NewID generates a unique identifier for turns, calls and routing cycles.
func NewID() string { return uuid.NewString() }
