package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(level LogLevel) (*SwitchboardLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = buf
	cfg.AddSource = false
	return NewLogger(cfg), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "kept too", entries[1]["msg"])
}

func TestKeyValueArgsBecomeAttributes(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	l.Info("routing cycle started", "session_id", "sess-1", "iteration", 2)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "sess-1", entries[0]["session_id"])
	assert.EqualValues(t, 2, entries[0]["iteration"])
}

func TestContextualCloning(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	l.WithComponent("orchestrator").
		WithSession("sess-1", "cycle-9").
		WithContext("delegate", "query_database").
		Info("delegating")

	// The original logger carries none of the derived context.
	l.Info("plain")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "orchestrator", entries[0]["component"])
	assert.Equal(t, "sess-1", entries[0]["session_id"])
	assert.Equal(t, "cycle-9", entries[0]["cycle_id"])
	assert.Equal(t, "query_database", entries[0]["delegate"])
	assert.NotContains(t, entries[1], "component")
}

func TestLogDelegateAndModelCalls(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	l.LogDelegateCall("query_database", 120*time.Millisecond, true, nil)
	l.LogDelegateCall("translate_text", 30*time.Millisecond, false, errors.New("boom"))
	l.LogModelCall("gpt-4o-mini", 512, 900*time.Millisecond, true, nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "query_database", entries[0]["tool_name"])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
	assert.EqualValues(t, 512, entries[2]["token_count"])
}

func TestNoOpLoggerSatisfiesInterface(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("ignored")
	l.Info("ignored")
	l.Warn("ignored")
	l.Error("ignored")
}
