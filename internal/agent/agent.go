// File: internal/agent/agent.go

// Package agent runs the perceive-decide-gate-act-settle cycle that
// drives a surface toward a natural-language goal.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
	"github.com/xkilldash9x/aviator-cli/internal/config"
	"github.com/xkilldash9x/aviator-cli/internal/navigator"
	"github.com/xkilldash9x/aviator-cli/internal/safety"
)

var (
	// ErrEmptyGoal is returned when Run is called with a blank goal.
	ErrEmptyGoal = errors.New("goal must not be empty")

	// ErrAlreadyRunning is returned when Run is called while a run is
	// in flight. Runs are never queued.
	ErrAlreadyRunning = errors.New("a run is already in progress")
)

const (
	defaultStuckThreshold    = 3
	defaultPausePollInterval = 100 * time.Millisecond
	defaultHistoryWindow     = 10
	defaultMaxSteps          = 40
)

// Agent owns one run at a time: the step history, the stop and pause
// flags, and the lifecycle event stream. The loop itself is
// single-threaded; the flags are the only state touched from other
// goroutines.
type Agent struct {
	cfg     config.AgentConfig
	surface schemas.Surface
	oracle  schemas.Oracle
	nav     *navigator.Navigator
	policy  safety.Policy
	sinks   []schemas.EventSink
	logger  *zap.Logger

	running atomic.Bool
	stopped atomic.Bool
	paused  atomic.Bool

	mu      sync.Mutex
	history []schemas.Step
}

// New assembles an agent. The policy is loaded once by the caller and
// held for the run's lifetime; sinks receive lifecycle events
// synchronously in emission order.
func New(cfg config.AgentConfig, surface schemas.Surface, oracle schemas.Oracle, nav *navigator.Navigator, policy safety.Policy, logger *zap.Logger, sinks ...schemas.EventSink) *Agent {
	return &Agent{
		cfg:     cfg,
		surface: surface,
		oracle:  oracle,
		nav:     nav,
		policy:  policy,
		sinks:   sinks,
		logger:  logger.Named("agent"),
	}
}

// Stop requests termination. It is observed at the top of the next
// cycle and during pause polling.
func (a *Agent) Stop() { a.stopped.Store(true) }

// Pause suspends the loop before its next cycle. While paused the agent
// performs no perception, decision or action.
func (a *Agent) Pause() { a.paused.Store(true) }

// Resume lifts a pause.
func (a *Agent) Resume() { a.paused.Store(false) }

// Running reports whether a run is in flight.
func (a *Agent) Running() bool { return a.running.Load() }

// Run drives the surface until the goal completes, a budget or stall
// limit trips, or the run is stopped. Internal failures never escape:
// they surface as an error-flavored RunResult.
func (a *Agent) Run(ctx context.Context, goal string) (result schemas.RunResult, err error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return schemas.RunResult{}, ErrEmptyGoal
	}
	if !a.running.CompareAndSwap(false, true) {
		return schemas.RunResult{}, ErrAlreadyRunning
	}
	defer a.running.Store(false)

	// A stale stop flag from a previous run is cleared; a pause set
	// before Run is honored until Resume.
	a.stopped.Store(false)
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()

	runID := uuid.NewString()
	a.logger.Info("Run starting", zap.String("run_id", runID), zap.String("goal", goal))

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Run panicked", zap.String("run_id", runID), zap.Any("panic", r))
			result = schemas.RunResult{
				Success:   false,
				Summary:   fmt.Sprintf("internal failure: %v", r),
				StepCount: a.stepCount(),
			}
			err = nil
			a.publish(schemas.Event{
				Type:      schemas.EventError,
				RunID:     runID,
				Summary:   result.Summary,
				StepCount: result.StepCount,
				At:        time.Now(),
			})
		}
	}()

	a.publish(schemas.Event{
		Type:  schemas.EventStart,
		RunID: runID,
		Goal:  goal,
		At:    time.Now(),
	})

	return a.loop(ctx, runID, goal), nil
}

// History returns a copy of the current run's step history.
func (a *Agent) History() []schemas.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]schemas.Step, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Agent) loop(ctx context.Context, runID, goal string) schemas.RunResult {
	budget := a.stepBudget()
	threshold := a.cfg.StuckThreshold
	if threshold <= 0 {
		threshold = defaultStuckThreshold
	}

	var (
		lastFingerprint string
		identical       int
	)

	for {
		if res, done := a.holdIfPaused(ctx, runID); done {
			return res
		}

		// PERCEIVE
		snap, err := a.perceive(ctx)
		if err != nil {
			if ctx.Err() != nil && a.stopped.Load() {
				return a.terminateStopped(runID)
			}
			return a.fail(runID, fmt.Sprintf("perception failed: %v", err))
		}
		activeTarget := snap.ActiveTarget

		// CHECK_PROGRESS
		fp := snap.Fingerprint()
		if fp == lastFingerprint {
			identical++
		} else {
			identical = 1
		}
		lastFingerprint = fp
		if identical >= threshold {
			return a.fail(runID, fmt.Sprintf(
				"stuck: surface unchanged across %d consecutive observations", identical))
		}

		// Enrichment is best effort; failure never blocks the cycle.
		elements, eerr := a.surface.Elements(ctx)
		if eerr != nil {
			a.logger.Debug("Element enumeration failed", zap.Error(eerr))
			elements = nil
		}

		// DECIDE
		decision, err := a.decide(ctx, goal, snap, elements)
		snap = nil // the payload must not outlive the decision call
		if err != nil {
			if ctx.Err() != nil && a.stopped.Load() {
				return a.terminateStopped(runID)
			}
			return a.fail(runID, fmt.Sprintf("decision oracle failed: %v", err))
		}

		step := a.appendStep(decision)
		a.publish(schemas.Event{
			Type:  schemas.EventStep,
			RunID: runID,
			Step:  &step,
			At:    step.CreatedAt,
		})

		switch decision.Action.Kind {
		case schemas.KindDone:
			return a.finish(runID, decision.Action.Params.Summary)
		case schemas.KindError:
			return a.fail(runID, decision.Action.Params.Message)
		}

		// GATE
		verdict := safety.Check(a.policy, activeTarget, decision)
		if !verdict.Allowed {
			a.logger.Warn("Action denied",
				zap.String("kind", string(decision.Action.Kind)),
				zap.String("reason", verdict.Reason))
			a.annotateLastStep("blocked: " + verdict.Reason)
			a.publish(schemas.Event{
				Type:    schemas.EventGate,
				RunID:   runID,
				Verdict: &verdict,
				At:      time.Now(),
			})
		} else {
			if verdict.NeedsConfirmation {
				// Advisory metadata for the operator; never blocking.
				a.publish(schemas.Event{
					Type:    schemas.EventGate,
					RunID:   runID,
					Verdict: &verdict,
					At:      time.Now(),
				})
			}

			// EXECUTE
			if execErr := a.nav.Execute(ctx, decision.Action); execErr != nil {
				if ctx.Err() != nil {
					return a.terminateStopped(runID)
				}
				a.logger.Warn("Action failed",
					zap.String("kind", string(decision.Action.Kind)),
					zap.Error(execErr))
				a.annotateLastStep("failed: " + execErr.Error())
			} else if settle := a.nav.SettleFor(decision.Action.Kind); settle > 0 {
				// SETTLE
				if sleepErr := sleepCtx(ctx, settle); sleepErr != nil {
					return a.terminateStopped(runID)
				}
			}
		}

		if a.stepCount() >= budget {
			return a.fail(runID, fmt.Sprintf(
				"step budget of %d exhausted before the goal completed", budget))
		}
	}
}

// holdIfPaused honors the stop flag and the pause sub-state at the top
// of a cycle. It returns a terminal result when the run must end.
func (a *Agent) holdIfPaused(ctx context.Context, runID string) (schemas.RunResult, bool) {
	poll := a.cfg.PausePollInterval
	if poll <= 0 {
		poll = defaultPausePollInterval
	}
	for {
		if a.stopped.Load() || ctx.Err() != nil {
			return a.terminateStopped(runID), true
		}
		if !a.paused.Load() {
			return schemas.RunResult{}, false
		}
		if err := sleepCtx(ctx, poll); err != nil {
			return a.terminateStopped(runID), true
		}
	}
}

func (a *Agent) perceive(ctx context.Context) (*schemas.Snapshot, error) {
	attempts := a.cfg.PerceiveRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && a.cfg.PerceiveRetryDelay > 0 {
			if err := sleepCtx(ctx, a.cfg.PerceiveRetryDelay); err != nil {
				return nil, err
			}
		}
		snap, err := a.surface.Capture(ctx)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		a.logger.Warn("Capture failed", zap.Int("attempt", i+1), zap.Error(err))
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (a *Agent) decide(ctx context.Context, goal string, snap *schemas.Snapshot, elements []schemas.Element) (schemas.Decision, error) {
	req := schemas.Request{
		Goal:     goal,
		Snapshot: snap,
		History:  a.historyWindow(),
		Elements: elements,
	}
	attempts := a.cfg.DecideAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		decision, err := a.oracle.Decide(ctx, req)
		if err == nil {
			return decision, nil
		}
		lastErr = err
		a.logger.Warn("Oracle call failed", zap.Int("attempt", i+1), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return schemas.Decision{}, lastErr
}

// historyWindow renders the most recent steps, oldest first.
func (a *Agent) historyWindow() []string {
	window := a.cfg.HistoryWindow
	if window <= 0 {
		window = defaultHistoryWindow
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	start := len(a.history) - window
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(a.history)-start)
	for _, s := range a.history[start:] {
		out = append(out, s.Summarize())
	}
	return out
}

func (a *Agent) appendStep(d schemas.Decision) schemas.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	step := schemas.Step{
		Ordinal:   len(a.history) + 1,
		Thought:   d.Thought,
		Kind:      d.Action.Kind,
		Params:    d.Action.Params,
		CreatedAt: time.Now(),
	}
	a.history = append(a.history, step)
	return step
}

// annotateLastStep appends an outcome marker to the newest step's
// thought so the oracle sees what happened next cycle. This is the only
// permitted mutation of history.
func (a *Agent) annotateLastStep(note string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.history) == 0 {
		return
	}
	last := &a.history[len(a.history)-1]
	last.Thought = strings.TrimSpace(last.Thought + " [" + note + "]")
	last.Outcome = note
}

func (a *Agent) stepCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history)
}

// stepBudget combines the loop default with the policy ceiling; the
// tighter of the two wins.
func (a *Agent) stepBudget() int {
	budget := a.cfg.MaxSteps
	if budget <= 0 {
		budget = defaultMaxSteps
	}
	if a.policy.MaxSteps > 0 && a.policy.MaxSteps < budget {
		budget = a.policy.MaxSteps
	}
	return budget
}

func (a *Agent) finish(runID, summary string) schemas.RunResult {
	res := schemas.RunResult{Success: true, Summary: summary, StepCount: a.stepCount()}
	a.logger.Info("Run complete",
		zap.String("run_id", runID),
		zap.Int("steps", res.StepCount),
		zap.String("summary", summary))
	a.publish(schemas.Event{
		Type:      schemas.EventDone,
		RunID:     runID,
		Summary:   summary,
		StepCount: res.StepCount,
		At:        time.Now(),
	})
	return res
}

func (a *Agent) fail(runID, summary string) schemas.RunResult {
	res := schemas.RunResult{Success: false, Summary: summary, StepCount: a.stepCount()}
	a.logger.Error("Run failed",
		zap.String("run_id", runID),
		zap.Int("steps", res.StepCount),
		zap.String("summary", summary))
	a.publish(schemas.Event{
		Type:      schemas.EventError,
		RunID:     runID,
		Summary:   summary,
		StepCount: res.StepCount,
		At:        time.Now(),
	})
	return res
}

func (a *Agent) terminateStopped(runID string) schemas.RunResult {
	const reason = "stopped by request"
	res := schemas.RunResult{Success: false, Summary: reason, StepCount: a.stepCount()}
	a.logger.Info("Run stopped",
		zap.String("run_id", runID),
		zap.Int("steps", res.StepCount))
	a.publish(schemas.Event{
		Type:      schemas.EventStopped,
		RunID:     runID,
		Summary:   reason,
		StepCount: res.StepCount,
		At:        time.Now(),
	})
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
