package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvasek/switchboard/core"
	"github.com/mvasek/switchboard/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestGetCreatesLazily(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()

	sess, err := s.Get("sess-1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, 1, s.Len())

	again, err := s.Get("sess-1")
	require.NoError(t, err)
	assert.Same(t, sess, again)
}

func TestAppendTurnAndHistory(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()

	require.NoError(t, s.AppendTurn("sess-1", core.NewUserTurn("hello")))
	require.NoError(t, s.AppendTurn("sess-1", core.NewModelTurn("hi there")))

	sess, err := s.Get("sess-1")
	require.NoError(t, err)
	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, core.RoleModel, history[1].Role)
}

func TestSeededConversationRoundTrips(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()

	require.NoError(t, testutil.NewConversationBuilder().
		User("how many users?").
		ToolCall("call-1", "query_database", `{"query":"SELECT count(*) FROM users"}`).
		ToolResult("call-1", "query_database", "success", "42").
		Model("There are 42 users.").
		Seed(s, "sess-1"))

	sess, err := s.Get("sess-1")
	require.NoError(t, err)
	history := sess.History()
	require.Len(t, history, 4)
	assert.True(t, history[1].IsToolCall())
	assert.True(t, history[2].IsToolResult())
	assert.Equal(t, "42", history[2].ToolResult.Payload)

	last, ok := sess.LastTurn()
	require.True(t, ok)
	assert.Equal(t, core.RoleModel, last.Role)
}

func TestEndDiscardsSession(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()

	require.NoError(t, s.AppendTurn("sess-1", core.NewUserTurn("hello")))
	require.NoError(t, s.End("sess-1"))
	assert.Equal(t, 0, s.Len())

	// Ending twice is a no-op.
	require.NoError(t, s.End("sess-1"))

	// A new session under the same id starts empty.
	sess, err := s.Get("sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sess.TurnCount())
}

func TestSweepDiscardsIdleSessions(t *testing.T) {
	s := NewInMemoryStore(func(o *InMemoryStoreOptions) {
		o.IdleTimeout = 10 * time.Millisecond
		o.SweepInterval = time.Hour // sweep manually
	})
	defer s.Close()

	require.NoError(t, s.AppendTurn("stale", core.NewUserTurn("old")))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.AppendTurn("fresh", core.NewUserTurn("new")))

	s.sweep(time.Now())

	assert.Equal(t, 1, s.Len())
	sess, err := s.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.TurnCount())
}
