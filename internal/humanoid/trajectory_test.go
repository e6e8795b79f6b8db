// File: internal/humanoid/trajectory_test.go
package humanoid

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveToLandsExactlyOnTarget(t *testing.T) {
	t.Parallel()
	h, exec := newTestHumanoid(testConfig(), 42)
	h.SetPosition(Vector2D{X: 10, Y: 10})

	target := Vector2D{X: 640, Y: 360}
	require.NoError(t, h.MoveTo(context.Background(), target))

	moves := exec.eventsOfType(MouseMove)
	require.NotEmpty(t, moves)
	last := moves[len(moves)-1]
	assert.Equal(t, target.X, last.X)
	assert.Equal(t, target.Y, last.Y)
	assert.Equal(t, target, h.Position())
}

func TestMoveToStepCountWithinBounds(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	h, exec := newTestHumanoid(cfg, 7)
	h.SetPosition(Vector2D{X: 0, Y: 0})

	require.NoError(t, h.MoveTo(context.Background(), Vector2D{X: 400, Y: 300}))

	moves := exec.eventsOfType(MouseMove)
	assert.GreaterOrEqual(t, len(moves), cfg.MinPathSteps)
	assert.LessOrEqual(t, len(moves), cfg.MaxPathSteps)
}

// One thousand randomized movements; every intermediate sample must stay
// within the endpoints' bounding box expanded by the configured deviation
// plus jitter allowance.
func TestMoveToSamplesStayWithinDeviationBounds(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	h, exec := newTestHumanoid(cfg, 1234)

	pad := cfg.MaxPathDeviation + cfg.JitterPx
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		start := Vector2D{
			X: float64(h.randBetween(0, 1920)),
			Y: float64(h.randBetween(0, 1080)),
		}
		end := Vector2D{
			X: float64(h.randBetween(0, 1920)),
			Y: float64(h.randBetween(0, 1080)),
		}
		h.SetPosition(start)

		exec.mu.Lock()
		exec.events = nil
		exec.mu.Unlock()

		require.NoError(t, h.MoveTo(ctx, end))

		minX := math.Min(start.X, end.X) - pad
		maxX := math.Max(start.X, end.X) + pad
		minY := math.Min(start.Y, end.Y) - pad
		maxY := math.Max(start.Y, end.Y) + pad

		for _, m := range exec.eventsOfType(MouseMove) {
			require.GreaterOrEqual(t, m.X, minX, "move %d x below bounds (start=%v end=%v)", i, start, end)
			require.LessOrEqual(t, m.X, maxX, "move %d x above bounds (start=%v end=%v)", i, start, end)
			require.GreaterOrEqual(t, m.Y, minY, "move %d y below bounds (start=%v end=%v)", i, start, end)
			require.LessOrEqual(t, m.Y, maxY, "move %d y above bounds (start=%v end=%v)", i, start, end)
		}
	}
}

func TestMoveToIsDeterministicForFixedSeed(t *testing.T) {
	t.Parallel()

	run := func() []MouseEventData {
		h, exec := newTestHumanoid(testConfig(), 99)
		h.SetPosition(Vector2D{X: 5, Y: 5})
		require.NoError(t, h.MoveTo(context.Background(), Vector2D{X: 800, Y: 600}))
		return exec.eventsOfType(MouseMove)
	}

	assert.Equal(t, run(), run())
}

func TestMoveToTrivialDistance(t *testing.T) {
	t.Parallel()
	h, exec := newTestHumanoid(testConfig(), 3)
	h.SetPosition(Vector2D{X: 100, Y: 100})

	// Sub-pixel movement collapses to a single landing event.
	require.NoError(t, h.MoveTo(context.Background(), Vector2D{X: 100.4, Y: 100.2}))
	moves := exec.eventsOfType(MouseMove)
	require.Len(t, moves, 1)
	assert.Equal(t, 100.4, moves[0].X)
}

func TestMoveToHonorsContextCancellation(t *testing.T) {
	t.Parallel()
	h, _ := newTestHumanoid(testConfig(), 11)
	h.SetPosition(Vector2D{X: 0, Y: 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.MoveTo(ctx, Vector2D{X: 500, Y: 500})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEaseInOutCubicShape(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, computeEaseInOutCubic(0))
	assert.Equal(t, 1.0, computeEaseInOutCubic(1))
	assert.InDelta(t, 0.5, computeEaseInOutCubic(0.5), 1e-9)
	// Monotonic.
	prev := 0.0
	for t0 := 0.05; t0 <= 1.0; t0 += 0.05 {
		cur := computeEaseInOutCubic(t0)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
