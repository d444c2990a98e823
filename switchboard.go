// Package switchboard provides a high-level façade over the orchestrator and
// service abstractions (capabilities, sessions, invocation & logging) for
// building LLM-routed request handling. Most applications interact with this
// package by:
//  1. Creating a Switchboard via New() with a reasoning model
//  2. Registering one or more delegates (Register / RegisterFunc)
//  3. Routing user requests (Route) and reading the terminal outcome
//
// The façade delegates cycle control to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply tuned
// timeouts, a rate limiter and a structured logger.
package switchboard

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/mvasek/switchboard/capability"
	"github.com/mvasek/switchboard/config"
	"github.com/mvasek/switchboard/core"
	"github.com/mvasek/switchboard/invoker"
	"github.com/mvasek/switchboard/logging"
	"github.com/mvasek/switchboard/model"
	"github.com/mvasek/switchboard/orchestrator"
	"github.com/mvasek/switchboard/session"
)

// Options configures the Switchboard instance.
type Options struct {
	// Config carries router, model and delegate tuning. Defaults to
	// config.Default().
	Config config.Config

	// SessionStore persists conversation history (defaults to in-memory).
	SessionStore core.SessionStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Switchboard is the high-level façade aggregating the registry, invoker and
// orchestrator. Register delegates before the first Route call; routing
// freezes the capability set.
type Switchboard struct {
	opts     Options
	model    model.Model
	registry *capability.Registry
	invoker  *invoker.Invoker

	once sync.Once
	orch *orchestrator.Orchestrator
	err  error
}

// New creates a new Switchboard around the given reasoning model.
func New(m model.Model, optFns ...func(o *Options)) *Switchboard {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore(func(o *session.InMemoryStoreOptions) {
			o.IdleTimeout = opts.Config.Router.SessionIdleTimeout
			o.Logger = opts.Logger
		})
	}

	return &Switchboard{
		opts:     opts,
		model:    m,
		registry: capability.NewRegistry(func(o *capability.RegistryOptions) { o.Logger = opts.Logger }),
		invoker:  invoker.New(func(o *invoker.Options) { o.Logger = opts.Logger }),
	}
}

// Register adds a delegate capability. Tuning from the configuration's
// delegates block (timeout, idempotency, circuit breaker) is applied to the
// spec before registration.
func (s *Switchboard) Register(spec capability.Spec, binding capability.Binding) error {
	if cfg, ok := s.opts.Config.Delegates[spec.Name]; ok {
		if cfg.Timeout > 0 {
			spec.Timeout = cfg.Timeout
		}
		if cfg.Idempotent {
			spec.Idempotent = true
		}
		if cfg.Breaker {
			binding = invoker.NewBreakerBinding(spec.Name, binding, func(o *invoker.BreakerOptions) {
				if cfg.MaxFailures > 0 {
					o.MaxFailures = cfg.MaxFailures
				}
				o.Logger = s.opts.Logger
			})
		}
	}
	return s.registry.Register(spec, binding)
}

// RegisterFunc adds a delegate capability backed by a plain function.
func (s *Switchboard) RegisterFunc(spec capability.Spec, fn func(ctx context.Context, args map[string]any) (any, error)) error {
	return s.Register(spec, capability.BindingFunc(fn))
}

// Route runs one routing cycle and returns its terminal outcome. The first
// call freezes the capability registry.
func (s *Switchboard) Route(ctx context.Context, sessionID, input string) (core.Outcome, error) {
	s.once.Do(func() { s.err = s.buildOrchestrator() })
	if s.err != nil {
		return nil, s.err
	}
	return s.orch.Route(ctx, sessionID, input)
}

// RouteText is a convenience wrapper returning the answer text. Failure
// outcomes are surfaced as errors.
func (s *Switchboard) RouteText(ctx context.Context, sessionID, input string) (string, error) {
	outcome, err := s.Route(ctx, sessionID, input)
	if err != nil {
		return "", err
	}
	switch v := outcome.(type) {
	case core.FinalAnswer:
		return v.Text, nil
	case core.FailureReport:
		return "", v
	default:
		return "", fmt.Errorf("unexpected outcome %T", outcome)
	}
}

// EndSession discards a session's history.
func (s *Switchboard) EndSession(sessionID string) error {
	if s.orch == nil {
		return s.opts.SessionStore.End(sessionID)
	}
	return s.orch.EndSession(sessionID)
}

// History returns a copy of a session's turn history.
func (s *Switchboard) History(sessionID string) ([]core.Turn, error) {
	sess, err := s.opts.SessionStore.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

func (s *Switchboard) buildOrchestrator() error {
	var limiter *rate.Limiter
	if rps := s.opts.Config.Router.ModelCallsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	orch, err := orchestrator.New(s.model, s.registry, func(o *orchestrator.Options) {
		o.MaxIterations = s.opts.Config.Router.MaxIterations
		o.MaxConcurrentCycles = s.opts.Config.Router.MaxConcurrentCycles
		o.ModelCallTimeout = s.opts.Config.Router.ModelCallTimeout
		if s.opts.Config.Router.Instructions != "" {
			o.Instructions = s.opts.Config.Router.Instructions
		}
		o.Limiter = limiter
		o.SessionStore = s.opts.SessionStore
		o.Invoker = s.invoker
		o.Logger = s.opts.Logger
	})
	if err != nil {
		return err
	}
	s.orch = orch
	return nil
}
