package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/mvasek/switchboard/core"
)

// StubModel is a lightweight in-memory Model useful for tests and examples.
// It replays a script of canned responses in order, falling back to keyed
// responses matched against the latest user turn.
type StubModel struct {
	mu        sync.Mutex
	info      Info
	script    []*Response
	cursor    int
	responses map[string]*Response
	requests  []Request
	err       error
}

// NewStubModel constructs a StubModel with tool support enabled.
func NewStubModel(name string) *StubModel {
	return &StubModel{
		info: Info{
			Name:          name,
			Provider:      "stub",
			SupportsTools: true,
		},
		responses: make(map[string]*Response),
	}
}

// WithoutToolSupport disables the tool-support flag, for exercising
// composition-time capability checks.
func (m *StubModel) WithoutToolSupport() *StubModel {
	m.info.SupportsTools = false
	return m
}

// Enqueue appends responses to the replay script. Scripted responses are
// consumed in FIFO order, one per Complete call.
func (m *StubModel) Enqueue(responses ...*Response) *StubModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
	return m
}

// AddResponse registers a canned response for an exact user input, used when
// the script is exhausted.
func (m *StubModel) AddResponse(input string, resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = resp
}

// FailWith makes every subsequent Complete call return err.
func (m *StubModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns a copy of every Request seen so far, for assertions on
// what history and tool definitions the caller sent.
func (m *StubModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Model.
func (m *StubModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}

	if m.cursor < len(m.script) {
		resp := m.script[m.cursor]
		m.cursor++
		return resp, nil
	}

	input := lastUserText(req.Turns)
	if resp, ok := m.responses[input]; ok {
		return resp, nil
	}

	return &Response{
		ID:           core.NewID(),
		Text:         fmt.Sprintf("Stub response to: %s", input),
		FinishReason: "stop",
	}, nil
}

// Info implements Model.
func (m *StubModel) Info() Info { return m.info }

func lastUserText(turns []core.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == core.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}
