// File: internal/surface/browser.go

// Package surface provides the interactive substrates the agent acts on:
// a chromedp-driven browser tab and a wrapper over an external desktop
// driver. Both satisfy the same capability interface, so the rest of the
// system never knows which one it is steering.
package surface

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
	"github.com/xkilldash9x/aviator-cli/internal/config"
	"github.com/xkilldash9x/aviator-cli/internal/humanoid"
)

// Browser drives one Chrome tab over CDP. Input goes through the motion
// emulator when it is enabled; otherwise events are injected directly.
type Browser struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	exec   humanoid.Executor
	motion *humanoid.Humanoid
}

// NewBrowser launches a browser instance and opens its first tab.
func NewBrowser(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	for _, arg := range cfg.Args {
		name, value, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if value == "" {
			opts = append(opts, chromedp.Flag(name, true))
		} else {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Kick the browser process so failures surface here, not mid-run.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	b := &Browser{
		cfg:         cfg,
		logger:      logger.Named("surface.browser"),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		exec:        humanoid.NewCDPExecutor(),
	}
	if cfg.Humanoid.Enabled {
		b.motion = humanoid.New(cfg.Humanoid, b.exec, logger)
	}
	return b, nil
}

// Capture grabs a screenshot plus the page identity.
func (b *Browser) Capture(ctx context.Context) (*schemas.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		payload []byte
		title   string
		origin  string
		dims    []int
	)
	err := chromedp.Run(b.tabCtx,
		chromedp.Title(&title),
		chromedp.Evaluate(`window.location.origin`, &origin),
		chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &dims),
		chromedp.ActionFunc(func(cctx context.Context) error {
			var err error
			payload, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(cctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("capturing snapshot: %w", err)
	}

	snap := &schemas.Snapshot{
		Payload:      payload,
		ActiveTarget: activeTarget(title, origin),
		TakenAt:      time.Now(),
	}
	if len(dims) == 2 {
		snap.Width, snap.Height = dims[0], dims[1]
	}
	return snap, nil
}

// Elements enumerates interactive elements from the serialized DOM.
func (b *Browser) Elements(ctx context.Context) ([]schemas.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rawHTML string
	if err := chromedp.Run(b.tabCtx, chromedp.OuterHTML("html", &rawHTML, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("reading page HTML: %w", err)
	}
	return parseElements(rawHTML)
}

// Bounds reports the viewport size.
func (b *Browser) Bounds(ctx context.Context) (schemas.Bounds, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Bounds{}, err
	}
	var dims []float64
	if err := chromedp.Run(b.tabCtx, chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &dims)); err != nil {
		return schemas.Bounds{}, fmt.Errorf("reading viewport size: %w", err)
	}
	if len(dims) != 2 {
		return schemas.Bounds{}, fmt.Errorf("unexpected viewport response")
	}
	return schemas.Bounds{Width: dims[0], Height: dims[1]}, nil
}

func (b *Browser) Click(ctx context.Context, x, y float64, button string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := humanoid.Vector2D{X: x, Y: y}
	btn := humanoid.ParseButton(button)
	if b.motion != nil {
		return b.motion.Click(b.tabCtx, target, btn)
	}
	return b.directClick(target, btn)
}

func (b *Browser) Drag(ctx context.Context, x1, y1, x2, y2 float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := humanoid.Vector2D{X: x1, Y: y1}
	to := humanoid.Vector2D{X: x2, Y: y2}
	if b.motion != nil {
		return b.motion.Drag(b.tabCtx, from, to)
	}
	return b.directDrag(from, to)
}

func (b *Browser) TypeText(ctx context.Context, text string, perKeyDelay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.motion != nil {
		return b.motion.TypeText(b.tabCtx, text, perKeyDelay)
	}
	return b.exec.SendKeys(b.tabCtx, text)
}

func (b *Browser) PressKey(ctx context.Context, combo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	keys, modifiers, err := parseCombo(combo)
	if err != nil {
		return err
	}
	return chromedp.Run(b.tabCtx, chromedp.KeyEvent(keys, chromedp.KeyModifiers(modifiers)))
}

func (b *Browser) Scroll(ctx context.Context, delta float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.motion != nil {
		return b.motion.Scroll(b.tabCtx, delta)
	}
	return b.exec.DispatchMouseEvent(b.tabCtx, humanoid.MouseEventData{
		Type:   humanoid.MouseWheel,
		DeltaY: delta,
	})
}

// Navigate opens the target URL. A bare host gets an https scheme.
func (b *Browser) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	url := target
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	if err := chromedp.Run(b.tabCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	if b.motion != nil {
		b.motion.SetPosition(humanoid.Vector2D{})
	}
	return nil
}

// findElementJS locates a clickable element by visible text, scrolls it
// into view and returns its center.
const findElementJS = `(() => {
	const needle = %q.toLowerCase();
	const candidates = document.querySelectorAll(
		'a, button, input[type="submit"], input[type="button"], [role="button"], summary, label, [onclick]');
	for (const el of candidates) {
		const text = (el.innerText || el.value || el.getAttribute('aria-label') || '').trim().toLowerCase();
		if (text.includes(needle)) {
			el.scrollIntoView({block: 'center', inline: 'center'});
			const r = el.getBoundingClientRect();
			return {x: r.x + r.width / 2, y: r.y + r.height / 2};
		}
	}
	return null;
})()`

func (b *Browser) FindAndClick(ctx context.Context, text, button string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var center *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := chromedp.Run(b.tabCtx, chromedp.Evaluate(fmt.Sprintf(findElementJS, text), &center)); err != nil {
		return fmt.Errorf("locating element %q: %w", text, err)
	}
	if center == nil {
		return fmt.Errorf("no visible element matching %q", text)
	}
	return b.Click(ctx, center.X, center.Y, button)
}

// ManageWindow supports the subset of window operations a tab can honor.
func (b *Browser) ManageWindow(ctx context.Context, op schemas.WindowOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch op {
	case schemas.WindowClose:
		return chromedp.Run(b.tabCtx, page.Close())
	case schemas.WindowInfo:
		return nil
	default:
		return fmt.Errorf("window operation %q is not supported on a browser surface", op)
	}
}

// Close tears down the tab and the browser process.
func (b *Browser) Close(ctx context.Context) error {
	b.tabCancel()
	b.allocCancel()
	return nil
}

// directClick injects a press/release pair without motion emulation.
func (b *Browser) directClick(target humanoid.Vector2D, btn humanoid.MouseButton) error {
	press := humanoid.MouseEventData{
		Type: humanoid.MousePress, X: target.X, Y: target.Y,
		Button: btn, ClickCount: 1,
	}
	release := humanoid.MouseEventData{
		Type: humanoid.MouseRelease, X: target.X, Y: target.Y,
		Button: btn, ClickCount: 1,
	}
	if err := b.exec.DispatchMouseEvent(b.tabCtx, press); err != nil {
		return err
	}
	return b.exec.DispatchMouseEvent(b.tabCtx, release)
}

func (b *Browser) directDrag(from, to humanoid.Vector2D) error {
	events := []humanoid.MouseEventData{
		{Type: humanoid.MousePress, X: from.X, Y: from.Y, Button: humanoid.ButtonLeft, ClickCount: 1},
		{Type: humanoid.MouseMove, X: to.X, Y: to.Y, Buttons: 1},
		{Type: humanoid.MouseRelease, X: to.X, Y: to.Y, Button: humanoid.ButtonLeft, ClickCount: 1},
	}
	for _, e := range events {
		if err := b.exec.DispatchMouseEvent(b.tabCtx, e); err != nil {
			return err
		}
	}
	return nil
}

// activeTarget prefers the window title, falling back to the origin.
func activeTarget(title, origin string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return origin
}

// namedKeys maps combo key names onto the control characters chromedp's
// keyboard layer understands.
var namedKeys = map[string]string{
	"enter":     kb.Enter,
	"return":    kb.Enter,
	"tab":       kb.Tab,
	"escape":    kb.Escape,
	"esc":       kb.Escape,
	"backspace": kb.Backspace,
	"delete":    kb.Delete,
	"space":     " ",
	"up":        kb.ArrowUp,
	"down":      kb.ArrowDown,
	"left":      kb.ArrowLeft,
	"right":     kb.ArrowRight,
	"home":      kb.Home,
	"end":       kb.End,
	"pageup":    kb.PageUp,
	"pagedown":  kb.PageDown,
}

// parseCombo splits "ctrl+shift+t" into the final key and its modifier
// bitmask.
func parseCombo(combo string) (string, input.Modifier, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	if len(parts) == 0 || parts[0] == "" {
		return "", 0, fmt.Errorf("empty key combo")
	}

	var modifiers input.Modifier
	var key string
	for i, part := range parts {
		switch part {
		case "ctrl", "control":
			modifiers |= input.ModifierCtrl
		case "shift":
			modifiers |= input.ModifierShift
		case "alt":
			modifiers |= input.ModifierAlt
		case "meta", "cmd", "super", "win":
			modifiers |= input.ModifierMeta
		default:
			if i != len(parts)-1 {
				return "", 0, fmt.Errorf("unknown modifier %q in combo %q", part, combo)
			}
			if named, ok := namedKeys[part]; ok {
				key = named
			} else if len([]rune(part)) == 1 {
				key = part
			} else {
				return "", 0, fmt.Errorf("unknown key %q in combo %q", part, combo)
			}
		}
	}
	if key == "" {
		return "", 0, fmt.Errorf("combo %q has no key", combo)
	}
	return key, modifiers, nil
}
