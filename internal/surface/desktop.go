// File: internal/surface/desktop.go
package surface

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

// DesktopDriver is the capability contract an OS integration provides.
// Implementations wrap whatever the host exposes (a compositor protocol,
// an accessibility API, a remote-desktop bridge); this package never
// assumes a particular one.
type DesktopDriver interface {
	// CaptureScreen returns encoded screen pixels plus their dimensions.
	CaptureScreen(ctx context.Context) (payload []byte, width, height int, err error)

	// ActiveWindow reports the focused window's title or application name.
	ActiveWindow(ctx context.Context) (string, error)

	// Bounds reports the usable screen area.
	Bounds(ctx context.Context) (schemas.Bounds, error)

	// Click presses a button at screen coordinates.
	Click(ctx context.Context, x, y float64, button string) error

	// Drag moves between two points with the primary button held.
	Drag(ctx context.Context, x1, y1, x2, y2 float64) error

	// TypeText enters text with an optional fixed per-key delay.
	TypeText(ctx context.Context, text string, perKeyDelay time.Duration) error

	// PressKey sends a key combo.
	PressKey(ctx context.Context, combo string) error

	// Scroll moves the view by delta pixels.
	Scroll(ctx context.Context, delta float64) error

	// Launch opens an application or URL with the host's opener.
	Launch(ctx context.Context, target string) error

	// FindAndClick clicks the UI element with the given visible text.
	FindAndClick(ctx context.Context, text, button string) error

	// ManageWindow applies a window operation to the focused window.
	ManageWindow(ctx context.Context, op schemas.WindowOp) error

	// Close releases the driver.
	Close(ctx context.Context) error
}

// Desktop adapts a DesktopDriver to the surface contract. Input is
// injected directly: desktop drivers inject at the OS level where the
// motion emulator's synthetic trajectories add nothing.
type Desktop struct {
	driver DesktopDriver
	logger *zap.Logger
}

// NewDesktop wraps an OS driver.
func NewDesktop(driver DesktopDriver, logger *zap.Logger) *Desktop {
	return &Desktop{
		driver: driver,
		logger: logger.Named("surface.desktop"),
	}
}

// Capture grabs the screen and the focused window identity. A failed
// window lookup degrades to an anonymous snapshot.
func (d *Desktop) Capture(ctx context.Context) (*schemas.Snapshot, error) {
	payload, width, height, err := d.driver.CaptureScreen(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing screen: %w", err)
	}

	target, err := d.driver.ActiveWindow(ctx)
	if err != nil {
		d.logger.Debug("Active window lookup failed", zap.Error(err))
		target = ""
	}

	return &schemas.Snapshot{
		Payload:      payload,
		Width:        width,
		Height:       height,
		ActiveTarget: target,
		TakenAt:      time.Now(),
	}, nil
}

// Elements is unsupported on a desktop: the screen is not enumerable the
// way a DOM is. The cycle proceeds on the screenshot alone.
func (d *Desktop) Elements(ctx context.Context) ([]schemas.Element, error) {
	return nil, nil
}

func (d *Desktop) Bounds(ctx context.Context) (schemas.Bounds, error) {
	return d.driver.Bounds(ctx)
}

func (d *Desktop) Click(ctx context.Context, x, y float64, button string) error {
	return d.driver.Click(ctx, x, y, button)
}

func (d *Desktop) Drag(ctx context.Context, x1, y1, x2, y2 float64) error {
	return d.driver.Drag(ctx, x1, y1, x2, y2)
}

func (d *Desktop) TypeText(ctx context.Context, text string, perKeyDelay time.Duration) error {
	return d.driver.TypeText(ctx, text, perKeyDelay)
}

func (d *Desktop) PressKey(ctx context.Context, combo string) error {
	return d.driver.PressKey(ctx, combo)
}

func (d *Desktop) Scroll(ctx context.Context, delta float64) error {
	return d.driver.Scroll(ctx, delta)
}

func (d *Desktop) Navigate(ctx context.Context, target string) error {
	return d.driver.Launch(ctx, target)
}

func (d *Desktop) FindAndClick(ctx context.Context, text, button string) error {
	return d.driver.FindAndClick(ctx, text, button)
}

func (d *Desktop) ManageWindow(ctx context.Context, op schemas.WindowOp) error {
	return d.driver.ManageWindow(ctx, op)
}

func (d *Desktop) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
