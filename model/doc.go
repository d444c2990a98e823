// Package model defines the provider-agnostic abstractions for driving the
// reasoning model at the center of request routing.
//
// Core goals:
//   - One blocking call per reasoning step (Complete), no streaming surface
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate deterministic scripting for tests (StubModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so the orchestrator remains decoupled from vendor SDKs.
package model
