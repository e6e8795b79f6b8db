// File: internal/humanoid/clickmodel.go
package humanoid

import (
	"context"
)

// Click moves to the target and presses the given button with realistic
// pre-press and hold timing.
func (h *Humanoid) Click(ctx context.Context, target Vector2D, button MouseButton) error {
	if err := h.MoveTo(ctx, target); err != nil {
		return err
	}
	// Settling pause before committing to the press.
	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.PreClickPauseMinMs, h.cfg.PreClickPauseMaxMs)); err != nil {
		return err
	}
	return h.pressRelease(ctx, target, button, 1)
}

// DoubleClick performs two presses separated by a human double-click gap.
func (h *Humanoid) DoubleClick(ctx context.Context, target Vector2D, button MouseButton) error {
	if err := h.Click(ctx, target, button); err != nil {
		return err
	}
	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.DoubleClickGapMin, h.cfg.DoubleClickGapMax)); err != nil {
		return err
	}
	return h.pressRelease(ctx, target, button, 2)
}

// Drag moves to the start point, presses the primary button, walks the
// trajectory to the end point with the button held, and releases.
func (h *Humanoid) Drag(ctx context.Context, from, to Vector2D) error {
	if err := h.MoveTo(ctx, from); err != nil {
		return err
	}
	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.PreClickPauseMinMs, h.cfg.PreClickPauseMaxMs)); err != nil {
		return err
	}

	press := MouseEventData{
		Type:       MousePress,
		X:          from.X,
		Y:          from.Y,
		Button:     ButtonLeft,
		ClickCount: 1,
		Buttons:    ButtonLeft.bitfield(),
	}
	if err := h.exec.DispatchMouseEvent(ctx, press); err != nil {
		return err
	}

	// Brief grip pause before the pull.
	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.ClickHoldMinMs, h.cfg.ClickHoldMaxMs)); err != nil {
		return err
	}

	if err := h.moveTo(ctx, to, ButtonLeft); err != nil {
		return err
	}

	release := MouseEventData{
		Type:       MouseRelease,
		X:          to.X,
		Y:          to.Y,
		Button:     ButtonLeft,
		ClickCount: 1,
		Buttons:    0,
	}
	return h.exec.DispatchMouseEvent(ctx, release)
}

// pressRelease dispatches one press/hold/release sequence at the target.
func (h *Humanoid) pressRelease(ctx context.Context, target Vector2D, button MouseButton, clickCount int) error {
	press := MouseEventData{
		Type:       MousePress,
		X:          target.X,
		Y:          target.Y,
		Button:     button,
		ClickCount: clickCount,
		Buttons:    button.bitfield(),
	}
	if err := h.exec.DispatchMouseEvent(ctx, press); err != nil {
		return err
	}

	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.ClickHoldMinMs, h.cfg.ClickHoldMaxMs)); err != nil {
		return err
	}

	release := MouseEventData{
		Type:       MouseRelease,
		X:          target.X,
		Y:          target.Y,
		Button:     button,
		ClickCount: clickCount,
		Buttons:    0,
	}
	return h.exec.DispatchMouseEvent(ctx, release)
}
