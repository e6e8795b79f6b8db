// File: internal/humanoid/trajectory.go
package humanoid

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// computeEaseInOutCubic provides a smooth acceleration and deceleration
// profile for movement.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// MoveTo moves the cursor from its current position to the target along a
// curved trajectory, dispatching intermediate move events. Intermediate
// samples stay within the bounding box of start and target expanded by
// MaxPathDeviation plus JitterPx; the final sample lands exactly on the
// target.
func (h *Humanoid) MoveTo(ctx context.Context, target Vector2D) error {
	return h.moveTo(ctx, target, ButtonNone)
}

// moveTo generates and walks the trajectory. buttonState is the button
// held during the movement (for drags).
func (h *Humanoid) moveTo(ctx context.Context, target Vector2D, buttonState MouseButton) error {
	h.mu.Lock()
	start := h.currentPos
	h.mu.Unlock()

	numSteps := h.randBetween(h.cfg.MinPathSteps, h.cfg.MaxPathSteps)
	path := h.generatePath(start, target, numSteps)

	buttons := buttonState.bitfield()

	for i, point := range path {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Perturb every sample except the final landing point, which
		// must hit the target exactly.
		pos := point
		if i < len(path)-1 {
			pos = point.Add(h.perturbation())
		}

		eventData := MouseEventData{
			Type:    MouseMove,
			X:       pos.X,
			Y:       pos.Y,
			Button:  ButtonNone,
			Buttons: buttons,
		}
		if err := h.exec.DispatchMouseEvent(ctx, eventData); err != nil {
			if ctx.Err() == nil {
				h.logger.Warn("Failed to dispatch mouse move event", zap.Error(err))
			}
			return err
		}

		h.mu.Lock()
		h.currentPos = pos
		h.mu.Unlock()

		if err := h.exec.Sleep(ctx, h.stepDelay(i, len(path))); err != nil {
			return err
		}
	}
	return nil
}

// generatePath builds a cubic Bezier trajectory from start to end. The
// control points sit at one and two thirds along the segment, displaced
// perpendicular to it by at most MaxPathDeviation, so the whole curve
// stays inside the endpoint bounding box padded by that deviation.
func (h *Humanoid) generatePath(start, end Vector2D, numSteps int) []Vector2D {
	mainVec := end.Sub(start)
	dist := mainVec.Mag()

	if dist < 1.0 || numSteps < 2 {
		return []Vector2D{end}
	}

	perp := mainVec.Normalize().Perp()

	// Short hops bow less than long sweeps.
	maxOffset := math.Min(h.cfg.MaxPathDeviation, dist*0.3)
	offset1 := perp.Mul(h.randFloat() * maxOffset)
	offset2 := perp.Mul(h.randFloat() * maxOffset)

	p0 := start
	p1 := start.Add(mainVec.Mul(1.0 / 3.0)).Add(offset1)
	p2 := start.Add(mainVec.Mul(2.0 / 3.0)).Add(offset2)
	p3 := end

	path := make([]Vector2D, numSteps)
	for i := 0; i < numSteps; i++ {
		t := computeEaseInOutCubic(float64(i) / float64(numSteps-1))
		omt := 1.0 - t
		omt2 := omt * omt
		omt3 := omt2 * omt
		t2 := t * t
		t3 := t2 * t

		path[i] = p0.Mul(omt3).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t3))
	}
	path[numSteps-1] = end
	return path
}

// perturbation combines low-frequency Perlin drift with per-sample
// jitter, limited so the total never exceeds JitterPx.
func (h *Humanoid) perturbation() Vector2D {
	h.mu.Lock()
	h.noiseTime += 0.13
	t := h.noiseTime
	drift := Vector2D{
		X: h.noiseX.Noise1D(t) * h.cfg.PerlinAmplitude,
		Y: h.noiseY.Noise1D(t) * h.cfg.PerlinAmplitude,
	}
	jitter := Vector2D{
		X: h.rng.NormFloat64() * h.cfg.JitterPx * 0.5,
		Y: h.rng.NormFloat64() * h.cfg.JitterPx * 0.5,
	}
	h.mu.Unlock()

	return drift.Add(jitter).Limit(h.cfg.JitterPx)
}

// stepDelay paces one trajectory step. The middle of the path runs faster
// than the ends, echoing the ease curve.
func (h *Humanoid) stepDelay(i, total int) time.Duration {
	d := h.randDuration(h.cfg.MinStepDelayMs, h.cfg.MaxStepDelayMs)
	if total < 3 {
		return d
	}
	// Distance from the nearest endpoint, 0..1.
	progress := float64(i) / float64(total-1)
	edge := math.Min(progress, 1-progress) * 2
	factor := 1.3 - 0.6*edge
	return time.Duration(float64(d) * factor)
}
