// File: internal/navigator/navigator.go

// Package navigator translates validated actions into surface operations.
// It is the only component that touches the surface for side effects: it
// validates first, checks coordinates against the live bounds, retries
// transient failures and reports how long the surface should be given to
// settle afterwards.
package navigator

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
	"github.com/xkilldash9x/aviator-cli/internal/config"
)

// scrollTickPx is the pixel height of one scroll tick.
const scrollTickPx = 120.0

// defaultScrollTicks applies when the oracle omits the amount.
const defaultScrollTicks = 3

// Navigator executes actions against a surface.
type Navigator struct {
	surface schemas.Surface
	cfg     config.AgentConfig
	logger  *zap.Logger
}

// New builds a navigator over the given surface.
func New(surface schemas.Surface, cfg config.AgentConfig, logger *zap.Logger) *Navigator {
	return &Navigator{
		surface: surface,
		cfg:     cfg,
		logger:  logger.Named("navigator"),
	}
}

// Execute performs one action. Validation and bounds failures are
// permanent; surface failures are retried up to the configured count
// with a fixed delay. No side effect happens before validation passes.
func (n *Navigator) Execute(ctx context.Context, action schemas.Action) error {
	if err := action.Validate(); err != nil {
		return err
	}

	// Terminal kinds carry a result, not a surface operation.
	if action.Kind.IsTerminal() {
		return nil
	}

	if action.Kind == schemas.KindWait {
		return n.wait(ctx, action.Params.Ms)
	}

	if err := n.checkBounds(ctx, action); err != nil {
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(n.cfg.ExecuteRetryDelay),
			uint64(n.cfg.ExecuteRetries)),
		ctx)

	attempt := 0
	operation := func() error {
		attempt++
		err := n.dispatch(ctx, action)
		if err != nil && attempt <= n.cfg.ExecuteRetries {
			n.logger.Warn("Action failed, retrying",
				zap.String("kind", string(action.Kind)),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	}
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("executing %s: %w", action.Kind, err)
	}
	return nil
}

// SettleFor returns how long the surface should be given to react after
// the action: nothing for waits, the long window after navigations, the
// short window otherwise.
func (n *Navigator) SettleFor(kind schemas.ActionKind) time.Duration {
	switch {
	case kind == schemas.KindWait, kind.IsTerminal():
		return 0
	case kind.IsNavigation():
		return n.cfg.SettleNavigation
	default:
		return n.cfg.SettleShort
	}
}

// checkBounds rejects coordinate actions whose points fall outside the
// surface's interactive area.
func (n *Navigator) checkBounds(ctx context.Context, action schemas.Action) error {
	var points [][2]float64
	switch action.Kind {
	case schemas.KindClick:
		points = [][2]float64{{action.Params.X, action.Params.Y}}
	case schemas.KindDrag:
		points = [][2]float64{
			{action.Params.X, action.Params.Y},
			{action.Params.X2, action.Params.Y2},
		}
	default:
		return nil
	}

	bounds, err := n.surface.Bounds(ctx)
	if err != nil {
		return fmt.Errorf("querying surface bounds: %w", err)
	}
	for _, p := range points {
		if !bounds.Contains(p[0], p[1]) {
			return fmt.Errorf("%w: (%.0f, %.0f) outside %vx%v",
				schemas.ErrOutOfBounds, p[0], p[1], bounds.Width, bounds.Height)
		}
	}
	return nil
}

func (n *Navigator) dispatch(ctx context.Context, action schemas.Action) error {
	p := action.Params
	switch action.Kind {
	case schemas.KindClick:
		return n.surface.Click(ctx, p.X, p.Y, p.Button)
	case schemas.KindDrag:
		return n.surface.Drag(ctx, p.X, p.Y, p.X2, p.Y2)
	case schemas.KindType:
		return n.surface.TypeText(ctx, p.Text, time.Duration(p.DelayMs)*time.Millisecond)
	case schemas.KindKey:
		return n.surface.PressKey(ctx, p.Combo)
	case schemas.KindScroll:
		return n.surface.Scroll(ctx, scrollDelta(p))
	case schemas.KindFindAndClick:
		return n.surface.FindAndClick(ctx, p.Text, p.Button)
	case schemas.KindOpenApp, schemas.KindNavigate, schemas.KindOpenURL:
		// open_app accepts name or url, so resolve through Destination
		// rather than reading the name field directly.
		return n.surface.Navigate(ctx, action.Destination())
	case schemas.KindWindowManage:
		return n.surface.ManageWindow(ctx, p.WindowOp)
	default:
		return fmt.Errorf("%w: no dispatch for kind %q", schemas.ErrInvalidAction, action.Kind)
	}
}

// wait sleeps without touching the surface, honoring cancellation.
func (n *Navigator) wait(ctx context.Context, ms int) error {
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// scrollDelta converts direction plus tick count into a pixel delta
// (positive scrolls down).
func scrollDelta(p schemas.Params) float64 {
	ticks := p.Amount
	if ticks <= 0 {
		ticks = defaultScrollTicks
	}
	delta := float64(ticks) * scrollTickPx
	if p.Direction == "up" {
		delta = -delta
	}
	return delta
}
