// File: internal/humanoid/scrolling_test.go
package humanoid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollChunksSumToDelta(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		delta float64
	}{
		{"down", 600},
		{"up", -450},
		{"small", 40},
		{"fractional", 333.5},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			h, exec := newTestHumanoid(cfg, 61)
			h.SetPosition(Vector2D{X: 400, Y: 300})

			require.NoError(t, h.Scroll(context.Background(), tc.delta))

			wheels := exec.eventsOfType(MouseWheel)
			require.NotEmpty(t, wheels)
			assert.GreaterOrEqual(t, len(wheels), cfg.ScrollChunksMin)
			assert.LessOrEqual(t, len(wheels), cfg.ScrollChunksMax)

			var sum float64
			for _, w := range wheels {
				sum += w.DeltaY
				// Wheel events fire at the cursor position.
				assert.Equal(t, 400.0, w.X)
				assert.Equal(t, 300.0, w.Y)
			}
			assert.InDelta(t, tc.delta, sum, 1e-9)
		})
	}
}

func TestScrollZeroDeltaIsNoop(t *testing.T) {
	t.Parallel()
	h, exec := newTestHumanoid(testConfig(), 67)

	require.NoError(t, h.Scroll(context.Background(), 0))
	assert.Empty(t, exec.events)
}

func TestScrollPausesBetweenChunks(t *testing.T) {
	t.Parallel()
	h, exec := newTestHumanoid(testConfig(), 71)

	require.NoError(t, h.Scroll(context.Background(), 500))

	wheels := exec.eventsOfType(MouseWheel)
	// One pause between each pair of chunks.
	assert.Len(t, exec.sleeps, len(wheels)-1)
}

func TestScrollHonorsContextCancellation(t *testing.T) {
	t.Parallel()
	h, _ := newTestHumanoid(testConfig(), 73)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, h.Scroll(ctx, 300), context.Canceled)
}
