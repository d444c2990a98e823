package testutil

import (
	"github.com/mvasek/switchboard/core"
)

// ConversationBuilder helps construct turn histories with fluent chaining for
// tests. Example:
//
//	turns := NewConversationBuilder().
//		User("how many users?").
//		ToolCall("call-1", "query_database", `{"query":"SELECT count(*)"}`).
//		ToolResult("call-1", "query_database", "success", "42").
//		Model("There are 42 users.").
//		Build()
//
// Chain only the turns you need; IDs and timestamps are generated.
type ConversationBuilder struct {
	turns []core.Turn
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// User appends a user text turn (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.turns = append(b.turns, core.NewUserTurn(text))
	return b
}

// Model appends a model answer turn (chainable).
func (b *ConversationBuilder) Model(text string) *ConversationBuilder {
	b.turns = append(b.turns, core.NewModelTurn(text))
	return b
}

// ToolCall appends a model turn carrying a tool-call intent (chainable).
func (b *ConversationBuilder) ToolCall(callID, name, args string) *ConversationBuilder {
	b.turns = append(b.turns, core.NewToolCallTurn(callID, name, args))
	return b
}

// ToolResult appends a delegation result turn (chainable).
func (b *ConversationBuilder) ToolResult(callID, name, outcome, payload string) *ConversationBuilder {
	b.turns = append(b.turns, core.NewToolResultTurn(callID, name, outcome, payload))
	return b
}

// Build returns the accumulated turns.
func (b *ConversationBuilder) Build() []core.Turn { return b.turns }

// Seed appends the accumulated turns to a session store under the given id.
func (b *ConversationBuilder) Seed(store core.SessionStore, sessionID string) error {
	for _, t := range b.turns {
		if err := store.AppendTurn(sessionID, t); err != nil {
			return err
		}
	}
	return nil
}
