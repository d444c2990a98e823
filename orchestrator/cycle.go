package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mvasek/switchboard/core"
	"github.com/mvasek/switchboard/invoker"
	"github.com/mvasek/switchboard/model"
	"github.com/mvasek/switchboard/protocol"
)

// unknownToolOutcome marks a tool-result turn answering a call to an
// unregistered capability.
const unknownToolOutcome = "unknown_tool"

// cycle tracks the state of one routing cycle from user input to terminal
// outcome. It is used by a single goroutine.
type cycle struct {
	orch      *Orchestrator
	sessionID string
	cycleID   string
	toolDefs  []model.ToolDefinition
	unknowns  int
}

// run alternates reasoning and delegation until a terminal outcome. Model
// errors, parse failures and delegate failures each follow their own
// degradation path; only session store failures return a Go error.
func (c *cycle) run(ctx context.Context) (core.Outcome, error) {
	for iteration := 1; iteration <= c.orch.maxIterations; iteration++ {
		if ctx.Err() != nil {
			return c.cancelled(ctx), nil
		}

		resp, err := c.reason(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return c.cancelled(ctx), nil
			}
			c.orch.logger.Error("reasoning step failed",
				"session_id", c.sessionID, "cycle_id", c.cycleID,
				"iteration", iteration, "error", err.Error())
			return core.FailureReport{
				Reason:  core.FailureModel,
				Message: fmt.Sprintf("reasoning model failed: %v", err),
			}, nil
		}

		decision := protocol.Parse(resp)

		switch d := decision.(type) {
		case protocol.FinalAnswer:
			if err := c.append(core.NewModelTurn(d.Text)); err != nil {
				return nil, err
			}
			return core.FinalAnswer{Text: d.Text}, nil

		case protocol.ParseFailure:
			// Unclassifiable output degrades to returning whatever text the
			// model produced rather than aborting the cycle.
			c.orch.logger.Warn("model output not classifiable",
				"session_id", c.sessionID, "cycle_id", c.cycleID, "reason", d.Reason)
			if strings.TrimSpace(d.Raw) == "" {
				return core.FailureReport{
					Reason:  core.FailureModel,
					Message: d.Reason,
				}, nil
			}
			if err := c.append(core.NewModelTurn(d.Raw)); err != nil {
				return nil, err
			}
			return core.FinalAnswer{Text: d.Raw}, nil

		case protocol.ToolCallRequest:
			outcome, err := c.delegate(ctx, d)
			if err != nil || outcome != nil {
				return outcome, err
			}
			// Delegation result appended; loop back for another reasoning step.
		}
	}

	return core.FailureReport{
		Reason:  core.FailureLoopLimit,
		Message: fmt.Sprintf("no final answer after %d reasoning steps", c.orch.maxIterations),
	}, nil
}

// reason performs one bounded model call over the full session history.
func (c *cycle) reason(ctx context.Context) (*model.Response, error) {
	if c.orch.limiter != nil {
		if err := c.orch.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	sess, err := c.orch.sessionStore.Get(c.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.orch.modelCallTimeout)
	defer cancel()

	started := time.Now()
	resp, err := c.orch.model.Complete(callCtx, model.Request{
		Instructions: c.orch.instructions,
		Turns:        sess.History(),
		Tools:        c.toolDefs,
	})
	c.orch.logger.Debug("reasoning step completed",
		"session_id", c.sessionID, "cycle_id", c.cycleID,
		"duration_ms", time.Since(started).Milliseconds(), "error", err != nil)
	return resp, err
}

// delegate resolves and executes one tool-call request. It returns a non-nil
// outcome only when the cycle must end; otherwise the result has been
// appended to the session and the caller re-reasons.
func (c *cycle) delegate(ctx context.Context, req protocol.ToolCallRequest) (core.Outcome, error) {
	if err := c.append(core.NewToolCallTurn(req.CallID, req.Name, string(req.Raw))); err != nil {
		return nil, err
	}

	binding, spec, err := c.orch.registry.Resolve(req.Name)
	if err != nil {
		return c.handleUnknownTool(req)
	}

	args, err := protocol.ValidateArguments(spec, c.orch.registry.CompiledSchema(req.Name), req.Args)
	if err != nil {
		// Feed the rejection back so the model can correct its call.
		c.orch.logger.Warn("tool call rejected",
			"session_id", c.sessionID, "cycle_id", c.cycleID,
			"capability", req.Name, "error", err.Error())
		return nil, c.append(core.NewToolResultTurn(
			req.CallID, req.Name, string(invoker.OutcomeInvalidArguments), err.Error()))
	}

	result := c.orch.invoker.Invoke(ctx, spec, binding, args)
	if result.Outcome == invoker.OutcomeCancelled {
		if err := c.append(core.NewToolResultTurn(
			req.CallID, req.Name, string(result.Outcome), result.Diagnostic)); err != nil {
			return nil, err
		}
		return c.cancelled(ctx), nil
	}

	payload := result.Payload
	if !result.OK() {
		payload = result.Diagnostic
	}
	return nil, c.append(core.NewToolResultTurn(req.CallID, req.Name, string(result.Outcome), payload))
}

// handleUnknownTool gives the model one chance per cycle to recover from
// calling something unregistered; a second occurrence aborts the cycle.
func (c *cycle) handleUnknownTool(req protocol.ToolCallRequest) (core.Outcome, error) {
	c.unknowns++
	if c.unknowns > 1 {
		return core.FailureReport{
			Reason:  core.FailureUnknownTool,
			Message: fmt.Sprintf("capability %q requested but not registered, repeatedly", req.Name),
		}, nil
	}

	c.orch.logger.Warn("unknown capability requested",
		"session_id", c.sessionID, "cycle_id", c.cycleID, "capability", req.Name)

	available := make([]string, 0, len(c.toolDefs))
	for _, def := range c.toolDefs {
		available = append(available, def.Function.Name)
	}
	payload := fmt.Sprintf("capability %q is not registered; available: %s",
		req.Name, strings.Join(available, ", "))
	return nil, c.append(core.NewToolResultTurn(req.CallID, req.Name, unknownToolOutcome, payload))
}

func (c *cycle) cancelled(ctx context.Context) core.Outcome {
	msg := "routing cycle cancelled"
	if err := ctx.Err(); err != nil {
		msg = err.Error()
	}
	return core.FailureReport{Reason: core.FailureCancelled, Message: msg}
}

func (c *cycle) append(t core.Turn) error {
	if err := c.orch.sessionStore.AppendTurn(c.sessionID, t); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}
