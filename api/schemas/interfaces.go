// api/schemas/interfaces.go
package schemas

import (
	"context"
	"time"
)

// Oracle converts a goal, the current snapshot and recent history into
// exactly one structured decision. Implementations own their transport
// and provider selection; the loop sees one capability. A response the
// implementation cannot reduce to a Decision must be coerced into a
// KindError action, never surfaced as a transport error.
type Oracle interface {
	Decide(ctx context.Context, req Request) (Decision, error)
}

// Bounds describes the interactive area of a surface in CSS/screen pixels.
type Bounds struct {
	Width  float64
	Height float64
}

// Contains reports whether the point lies within the bounds.
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= b.Width && y <= b.Height
}

// Surface is the capability interface over one interactive substrate
// (a browser page or a desktop session). Capture and input primitives
// are provided externally; this package only defines the contract the
// core requires from them.
type Surface interface {
	// Capture produces a perception snapshot of the current state.
	Capture(ctx context.Context) (*Snapshot, error)

	// Elements enumerates interactive elements, best effort. Failure is
	// non-fatal to the cycle.
	Elements(ctx context.Context) ([]Element, error)

	// Bounds returns the current interactive area.
	Bounds(ctx context.Context) (Bounds, error)

	// Click presses the given button at surface coordinates.
	Click(ctx context.Context, x, y float64, button string) error

	// Drag moves from one point to another with the primary button held.
	Drag(ctx context.Context, x1, y1, x2, y2 float64) error

	// TypeText enters text into the focused element.
	TypeText(ctx context.Context, text string, perKeyDelay time.Duration) error

	// PressKey sends a key combo such as "ctrl+shift+t".
	PressKey(ctx context.Context, combo string) error

	// Scroll moves the viewport by delta pixels (positive scrolls down).
	Scroll(ctx context.Context, delta float64) error

	// Navigate opens a URL or application target.
	Navigate(ctx context.Context, target string) error

	// FindAndClick locates an element by its visible text and clicks it.
	FindAndClick(ctx context.Context, text, button string) error

	// ManageWindow applies a window operation where the substrate
	// supports one.
	ManageWindow(ctx context.Context, op WindowOp) error

	// Close releases the substrate.
	Close(ctx context.Context) error
}
