// File: internal/surface/desktop_test.go
package surface

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

// fakeDriver records the operations forwarded by the desktop surface.
type fakeDriver struct {
	calls []string

	screen    []byte
	width     int
	height    int
	window    string
	windowErr error
}

func (f *fakeDriver) mark(name string) { f.calls = append(f.calls, name) }

func (f *fakeDriver) CaptureScreen(context.Context) ([]byte, int, int, error) {
	f.mark("CaptureScreen")
	return f.screen, f.width, f.height, nil
}
func (f *fakeDriver) ActiveWindow(context.Context) (string, error) {
	f.mark("ActiveWindow")
	return f.window, f.windowErr
}
func (f *fakeDriver) Bounds(context.Context) (schemas.Bounds, error) {
	f.mark("Bounds")
	return schemas.Bounds{Width: float64(f.width), Height: float64(f.height)}, nil
}
func (f *fakeDriver) Click(_ context.Context, x, y float64, button string) error {
	f.mark("Click")
	return nil
}
func (f *fakeDriver) Drag(_ context.Context, x1, y1, x2, y2 float64) error {
	f.mark("Drag")
	return nil
}
func (f *fakeDriver) TypeText(_ context.Context, text string, perKeyDelay time.Duration) error {
	f.mark("TypeText")
	return nil
}
func (f *fakeDriver) PressKey(_ context.Context, combo string) error {
	f.mark("PressKey")
	return nil
}
func (f *fakeDriver) Scroll(_ context.Context, delta float64) error {
	f.mark("Scroll")
	return nil
}
func (f *fakeDriver) Launch(_ context.Context, target string) error {
	f.mark("Launch:" + target)
	return nil
}
func (f *fakeDriver) FindAndClick(_ context.Context, text, button string) error {
	f.mark("FindAndClick")
	return nil
}
func (f *fakeDriver) ManageWindow(_ context.Context, op schemas.WindowOp) error {
	f.mark("ManageWindow")
	return nil
}
func (f *fakeDriver) Close(context.Context) error {
	f.mark("Close")
	return nil
}

func TestDesktopCapture(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{
		screen: []byte{1, 2, 3, 4},
		width:  2560,
		height: 1440,
		window: "Text Editor - notes.txt",
	}
	d := NewDesktop(driver, zap.NewNop())

	snap, err := d.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, snap.Payload)
	assert.Equal(t, 2560, snap.Width)
	assert.Equal(t, 1440, snap.Height)
	assert.Equal(t, "Text Editor - notes.txt", snap.ActiveTarget)
	assert.False(t, snap.TakenAt.IsZero())
}

func TestDesktopCaptureToleratesWindowLookupFailure(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{
		screen:    []byte{9},
		width:     800,
		height:    600,
		windowErr: errors.New("compositor busy"),
	}
	d := NewDesktop(driver, zap.NewNop())

	snap, err := d.Capture(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.ActiveTarget)
}

func TestDesktopElementsAreUnsupported(t *testing.T) {
	t.Parallel()
	d := NewDesktop(&fakeDriver{}, zap.NewNop())

	elements, err := d.Elements(context.Background())
	require.NoError(t, err)
	assert.Nil(t, elements)
}

func TestDesktopNavigateLaunches(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{}
	d := NewDesktop(driver, zap.NewNop())

	require.NoError(t, d.Navigate(context.Background(), "calculator"))
	assert.Contains(t, driver.calls, "Launch:calculator")
}

func TestDesktopForwardsInputDirectly(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{width: 1920, height: 1080}
	d := NewDesktop(driver, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, d.Click(ctx, 10, 10, "left"))
	require.NoError(t, d.Drag(ctx, 0, 0, 5, 5))
	require.NoError(t, d.TypeText(ctx, "hi", 0))
	require.NoError(t, d.PressKey(ctx, "ctrl+s"))
	require.NoError(t, d.Scroll(ctx, 120))
	require.NoError(t, d.FindAndClick(ctx, "OK", "left"))
	require.NoError(t, d.ManageWindow(ctx, schemas.WindowMaximize))
	require.NoError(t, d.Close(ctx))

	assert.Equal(t, []string{
		"Click", "Drag", "TypeText", "PressKey", "Scroll",
		"FindAndClick", "ManageWindow", "Close",
	}, driver.calls)
}
