package model

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvasek/switchboard/core"
)

func TestStubModelScriptOrder(t *testing.T) {
	stub := NewStubModel("stub-v1")
	stub.Enqueue(
		&Response{Text: "first", FinishReason: "stop"},
		&Response{
			ToolCalls: []ToolCall{{
				ID:        "call-1",
				Name:      "query_database",
				Arguments: json.RawMessage(`{"query":"SELECT 1"}`),
			}},
			FinishReason: "tool_calls",
		},
	)

	req := Request{Turns: []core.Turn{core.NewUserTurn("hello")}}

	resp, err := stub.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = stub.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "query_database", resp.ToolCalls[0].Name)
	assert.Equal(t, "tool_calls", resp.FinishReason)
}

func TestStubModelKeyedFallback(t *testing.T) {
	stub := NewStubModel("stub-v1")
	stub.AddResponse("what time is it", &Response{Text: "noon", FinishReason: "stop"})

	resp, err := stub.Complete(context.Background(), Request{
		Turns: []core.Turn{core.NewUserTurn("what time is it")},
	})
	require.NoError(t, err)
	assert.Equal(t, "noon", resp.Text)

	resp, err = stub.Complete(context.Background(), Request{
		Turns: []core.Turn{core.NewUserTurn("something else")},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "something else")
}

func TestStubModelFailWith(t *testing.T) {
	stub := NewStubModel("stub-v1")
	boom := errors.New("provider unavailable")
	stub.FailWith(boom)

	_, err := stub.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestStubModelHonorsContext(t *testing.T) {
	stub := NewStubModel("stub-v1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stub.Complete(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStubModelRecordsRequests(t *testing.T) {
	stub := NewStubModel("stub-v1")
	_, err := stub.Complete(context.Background(), Request{Instructions: "be brief"})
	require.NoError(t, err)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be brief", reqs[0].Instructions)
	assert.True(t, stub.Info().SupportsTools)
	assert.False(t, stub.WithoutToolSupport().Info().SupportsTools)
}
