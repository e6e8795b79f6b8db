// File: internal/humanoid/scrolling.go
package humanoid

import (
	"context"
	"math"
)

// Scroll applies the vertical delta (positive scrolls down) as a burst of
// uneven wheel events rather than one synthetic jump. The sub-deltas sum
// exactly to the requested delta.
func (h *Humanoid) Scroll(ctx context.Context, delta float64) error {
	if delta == 0 {
		return nil
	}

	chunks := h.randBetween(h.cfg.ScrollChunksMin, h.cfg.ScrollChunksMax)
	if chunks < 1 {
		chunks = 1
	}

	// Uneven split: random weights normalized to the total.
	weights := make([]float64, chunks)
	var sum float64
	for i := range weights {
		weights[i] = 0.5 + (h.randFloat()+1)/2 // 0.5 .. 1.5
		sum += weights[i]
	}

	h.mu.Lock()
	pos := h.currentPos
	h.mu.Unlock()

	var applied float64
	for i := 0; i < chunks; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var chunk float64
		if i == chunks-1 {
			// Remainder keeps the total exact.
			chunk = delta - applied
		} else {
			chunk = math.Round(delta * weights[i] / sum)
		}
		applied += chunk

		event := MouseEventData{
			Type:   MouseWheel,
			X:      pos.X,
			Y:      pos.Y,
			Button: ButtonNone,
			DeltaY: chunk,
		}
		if err := h.exec.DispatchMouseEvent(ctx, event); err != nil {
			return err
		}

		if i < chunks-1 {
			if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.ScrollChunkDelayMin, h.cfg.ScrollChunkDelayMax)); err != nil {
				return err
			}
		}
	}
	return nil
}
