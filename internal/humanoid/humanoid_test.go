// File: internal/humanoid/humanoid_test.go
package humanoid

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/internal/config"
)

// recordingExecutor captures every dispatched event and sleep without
// touching a real input layer. Sleeps complete instantly.
type recordingExecutor struct {
	mu     sync.Mutex
	events []MouseEventData
	keys   []string
	sleeps []time.Duration

	dispatchErr error
}

func (r *recordingExecutor) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
	return nil
}

func (r *recordingExecutor) DispatchMouseEvent(ctx context.Context, data MouseEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dispatchErr != nil {
		return r.dispatchErr
	}
	r.events = append(r.events, data)
	return nil
}

func (r *recordingExecutor) SendKeys(ctx context.Context, keys string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys)
	return nil
}

func (r *recordingExecutor) eventsOfType(t MouseEventType) []MouseEventData {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []MouseEventData
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// testConfig mirrors the shipped defaults.
func testConfig() config.HumanoidConfig {
	return config.HumanoidConfig{
		Enabled: true,

		MinPathSteps:     20,
		MaxPathSteps:     35,
		JitterPx:         2.0,
		MaxPathDeviation: 40.0,
		PerlinAmplitude:  1.2,
		MinStepDelayMs:   4,
		MaxStepDelayMs:   28,

		PreClickPauseMinMs: 40,
		PreClickPauseMaxMs: 120,
		ClickHoldMinMs:     35,
		ClickHoldMaxMs:     110,
		DoubleClickGapMin:  60,
		DoubleClickGapMax:  180,

		KeyDelayMinMs:      40,
		KeyDelayMaxMs:      160,
		PunctuationFactor:  1.8,
		TypoRate:           0.03,
		ThinkPauseRate:     0.02,
		ThinkPauseMinMs:    350,
		ThinkPauseMaxMs:    1200,
		CorrectionPauseMin: 120,
		CorrectionPauseMax: 400,

		ScrollChunksMin:     3,
		ScrollChunksMax:     7,
		ScrollChunkDelayMin: 25,
		ScrollChunkDelayMax: 90,
	}
}

func newTestHumanoid(cfg config.HumanoidConfig, seed int64) (*Humanoid, *recordingExecutor) {
	exec := &recordingExecutor{}
	h := NewSeeded(cfg, exec, zap.NewNop(), seed)
	return h, exec
}
