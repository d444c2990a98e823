package model

import (
	"context"
	"encoding/json"

	"github.com/mvasek/switchboard/core"
)

// ToolCall represents a structured capability invocation requested by the
// model. Unified across vendors so downstream logic does not need
// per-provider branching.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"` // JSON object of arguments
}

// ToolDefinition declaratively exposes a callable capability to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual capability exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input for one reasoning step.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt for the model
	Turns        []core.Turn      `json:"turns"`        // Conversation history, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one completed reasoning step. A response carries free text,
// tool calls, or both; FinishReason reflects the provider's stop condition.
type Response struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "stub", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the interface the orchestrator drives. Complete performs exactly
// one reasoning step and blocks until the provider answers or ctx expires.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
