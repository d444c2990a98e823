package session

import (
	"sync"
	"time"

	"github.com/mvasek/switchboard/core"
	"github.com/mvasek/switchboard/logging"
)

// InMemoryStoreOptions configure an InMemoryStore.
type InMemoryStoreOptions struct {
	// IdleTimeout discards sessions untouched for this long. Zero disables
	// the sweep.
	IdleTimeout time.Duration

	// SweepInterval is how often the idle sweep runs.
	SweepInterval time.Duration

	// Logger receives sweep events.
	Logger logging.Logger
}

// InMemoryStore is a volatile SessionStore implementation storing sessions in
// a process local map. It is safe for concurrent access and best suited for
// single-process deployments. Sessions are created lazily on first use and
// discarded on End or after the configured idle timeout.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	opts     InMemoryStoreOptions
	stop     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryStore constructs an empty in-memory session store. When an idle
// timeout is configured a background sweep reclaims abandoned sessions until
// Close is called.
func NewInMemoryStore(optFns ...func(o *InMemoryStoreOptions)) *InMemoryStore {
	opts := InMemoryStoreOptions{
		SweepInterval: time.Minute,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &InMemoryStore{
		sessions: make(map[string]*core.Session),
		opts:     opts,
		stop:     make(chan struct{}),
	}
	if opts.IdleTimeout > 0 {
		go s.sweepLoop()
	}
	return s
}

// Get returns an existing session or creates a new one lazily.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return s.createLocked(id), nil
}

// AppendTurn adds a turn to an existing or newly created session.
func (s *InMemoryStore) AppendTurn(id string, t core.Turn) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = s.createLocked(id)
	}
	s.mu.Unlock()

	sess.AppendTurn(t)
	return nil
}

// End discards the session. Ending an unknown session is a no-op.
func (s *InMemoryStore) End(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the idle sweep. Idempotent.
func (s *InMemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// createLocked allocates and stores a new session; caller must already hold
// the write lock.
func (s *InMemoryStore) createLocked(id string) *core.Session {
	sess := core.NewSession(id)
	s.sessions[id] = sess
	return sess
}

func (s *InMemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep discards sessions idle longer than the configured timeout.
func (s *InMemoryStore) sweep(now time.Time) {
	cutoff := now.Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IdleSince().Before(cutoff) {
			delete(s.sessions, id)
			s.opts.Logger.Debug("idle session discarded", "session_id", id)
		}
	}
}
