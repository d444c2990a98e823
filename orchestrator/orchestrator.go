package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/mvasek/switchboard/capability"
	"github.com/mvasek/switchboard/core"
	"github.com/mvasek/switchboard/invoker"
	"github.com/mvasek/switchboard/logging"
	"github.com/mvasek/switchboard/model"
	"github.com/mvasek/switchboard/protocol"
	"github.com/mvasek/switchboard/session"
)

// DefaultInstructions is the system prompt used when the caller supplies none.
const DefaultInstructions = "You are a request router. Answer directly when you can. " +
	"When a specialized capability fits the request better, call it with well-formed " +
	"arguments and use its result to answer. Report tool failures honestly instead of " +
	"inventing results."

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// MaxIterations caps reasoning steps per routing cycle.
	MaxIterations int
	// MaxConcurrentCycles limits routing cycles running at once.
	MaxConcurrentCycles int
	// ModelCallTimeout bounds each reasoning step.
	ModelCallTimeout time.Duration
	// Instructions is the system prompt sent on every reasoning step.
	Instructions string
	// Limiter, when set, throttles reasoning-step model calls across all
	// concurrent cycles.
	Limiter *rate.Limiter
	// SessionStore persists conversation history.
	SessionStore core.SessionStore
	// Invoker executes delegate bindings.
	Invoker *invoker.Invoker
	// Logger receives cycle lifecycle events.
	Logger logging.Logger
}

// Orchestrator routes requests by alternating model reasoning and delegate
// invocation. Public methods are safe for concurrent use.
type Orchestrator struct {
	model    model.Model
	registry *capability.Registry

	maxIterations    int
	modelCallTimeout time.Duration
	instructions     string
	limiter          *rate.Limiter

	sessionStore core.SessionStore
	invoker      *invoker.Invoker
	logger       logging.Logger

	sem chan struct{}
}

// New constructs an Orchestrator and freezes the registry. It fails fast when
// the model does not support structured tool calls, since routing without
// them would silently degrade to a plain chat loop.
func New(m model.Model, registry *capability.Registry, optFns ...func(o *Options)) (*Orchestrator, error) {
	if m == nil {
		return nil, fmt.Errorf("orchestrator: model is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("orchestrator: registry is required")
	}
	if !m.Info().SupportsTools {
		return nil, fmt.Errorf("orchestrator: model %q does not support tool calls", m.Info().Name)
	}

	opts := Options{
		MaxIterations:       6,
		MaxConcurrentCycles: 10,
		ModelCallTimeout:    60 * time.Second,
		Instructions:        DefaultInstructions,
		SessionStore:        session.NewInMemoryStore(),
		Invoker:             invoker.New(),
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations < 1 {
		return nil, fmt.Errorf("orchestrator: MaxIterations must be positive")
	}
	if opts.MaxConcurrentCycles < 1 {
		return nil, fmt.Errorf("orchestrator: MaxConcurrentCycles must be positive")
	}

	registry.Freeze()

	return &Orchestrator{
		model:            m,
		registry:         registry,
		maxIterations:    opts.MaxIterations,
		modelCallTimeout: opts.ModelCallTimeout,
		instructions:     opts.Instructions,
		limiter:          opts.Limiter,
		sessionStore:     opts.SessionStore,
		invoker:          opts.Invoker,
		logger:           opts.Logger,
		sem:              make(chan struct{}, opts.MaxConcurrentCycles),
	}, nil
}

// Route runs one routing cycle for the given user input and returns its
// terminal outcome: a FinalAnswer or a FailureReport. An error is returned
// only for infrastructure failures (session store), never for model or
// delegate misbehavior.
func (o *Orchestrator) Route(ctx context.Context, sessionID, input string) (core.Outcome, error) {
	if err := o.acquire(ctx); err != nil {
		return nil, err
	}
	defer o.release()

	cycleID := core.NewID()
	log := o.logger
	log.Info("routing cycle started", "session_id", sessionID, "cycle_id", cycleID)

	if err := o.sessionStore.AppendTurn(sessionID, core.NewUserTurn(input)); err != nil {
		return nil, fmt.Errorf("failed to append user turn: %w", err)
	}

	c := &cycle{
		orch:      o,
		sessionID: sessionID,
		cycleID:   cycleID,
		toolDefs:  protocol.EncodeSpecs(o.registry.DescribeAll()),
	}

	outcome, err := c.run(ctx)
	if err != nil {
		return nil, err
	}

	switch v := outcome.(type) {
	case core.FinalAnswer:
		log.Info("routing cycle answered", "session_id", sessionID, "cycle_id", cycleID)
	case core.FailureReport:
		log.Warn("routing cycle aborted",
			"session_id", sessionID, "cycle_id", cycleID,
			"reason", string(v.Reason), "message", v.Message)
	}
	return outcome, nil
}

// EndSession discards the session's history.
func (o *Orchestrator) EndSession(sessionID string) error {
	return o.sessionStore.End(sessionID)
}

// History returns a copy of the session's turn history.
func (o *Orchestrator) History(sessionID string) ([]core.Turn, error) {
	sess, err := o.sessionStore.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

func (o *Orchestrator) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case o.sem <- struct{}{}:
		return nil
	}
}

func (o *Orchestrator) release() { <-o.sem }
