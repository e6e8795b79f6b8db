// api/schemas/actions.go
package schemas

import (
	"fmt"
	"strings"
)

// ActionKind enumerates every action the decision oracle may request.
// The vocabulary is fixed; anything outside it is coerced to KindError
// at the oracle boundary.
type ActionKind string

const (
	KindClick        ActionKind = "click"
	KindDrag         ActionKind = "drag"
	KindType         ActionKind = "type"
	KindKey          ActionKind = "key"
	KindScroll       ActionKind = "scroll"
	KindOpenApp      ActionKind = "open_app"
	KindNavigate     ActionKind = "navigate" // alias of open_app carrying a name or URL
	KindOpenURL      ActionKind = "open_url"
	KindFindAndClick ActionKind = "find_and_click"
	KindWindowManage ActionKind = "window_manage"
	KindWait         ActionKind = "wait"
	KindDone         ActionKind = "done"
	KindError        ActionKind = "error"
)

// knownKinds is the closed set used by ParseKind and Validate.
var knownKinds = map[ActionKind]bool{
	KindClick: true, KindDrag: true, KindType: true, KindKey: true,
	KindScroll: true, KindOpenApp: true, KindNavigate: true, KindOpenURL: true,
	KindFindAndClick: true, KindWindowManage: true, KindWait: true,
	KindDone: true, KindError: true,
}

// ParseKind normalizes a raw action string from the oracle. The boolean
// reports whether the kind is part of the vocabulary.
func ParseKind(raw string) (ActionKind, bool) {
	k := ActionKind(strings.ToLower(strings.TrimSpace(raw)))
	return k, knownKinds[k]
}

// IsTerminal reports whether the kind ends the run. Only done and error do.
func (k ActionKind) IsTerminal() bool {
	return k == KindDone || k == KindError
}

// IsNavigation reports whether the kind changes the active destination.
// Navigation-class actions get destination pattern checks in the safety
// gate and a longer settle delay after execution.
func (k ActionKind) IsNavigation() bool {
	switch k {
	case KindOpenApp, KindNavigate, KindOpenURL:
		return true
	}
	return false
}

// IsTextEntry reports whether the kind enters free text into the surface.
func (k ActionKind) IsTextEntry() bool {
	return k == KindType
}

// WindowOp enumerates the window_manage sub-operations.
type WindowOp string

const (
	WindowMinimize  WindowOp = "minimize"
	WindowMaximize  WindowOp = "maximize"
	WindowRestore   WindowOp = "restore"
	WindowClose     WindowOp = "close"
	WindowSnapLeft  WindowOp = "snap_left"
	WindowSnapRight WindowOp = "snap_right"
	WindowInfo      WindowOp = "info"
)

var knownWindowOps = map[WindowOp]bool{
	WindowMinimize: true, WindowMaximize: true, WindowRestore: true,
	WindowClose: true, WindowSnapLeft: true, WindowSnapRight: true,
	WindowInfo: true,
}

// Params carries the kind-specific parameters of an action. The struct is
// flat on purpose: each kind reads only its own fields and Validate
// enforces the required ones, so a single JSON shape covers the whole
// vocabulary without per-kind unmarshalling.
type Params struct {
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	Button string  `json:"button,omitempty"` // left (default), right, middle

	Text    string `json:"text,omitempty"`
	DelayMs int    `json:"delay_ms,omitempty"`

	Combo string `json:"combo,omitempty"` // e.g. "ctrl+shift+t"

	Direction string `json:"direction,omitempty"` // up or down
	Amount    int    `json:"amount,omitempty"`    // scroll ticks, defaulted by the executor

	Name string `json:"name,omitempty"` // open_app / navigate target
	URL  string `json:"url,omitempty"`

	WindowOp WindowOp `json:"window_op,omitempty"`

	Ms int `json:"ms,omitempty"` // wait duration

	Summary string `json:"summary,omitempty"` // done
	Message string `json:"message,omitempty"` // error
}

// Action is the tagged variant produced by the decision oracle and consumed
// by the safety gate and the navigator.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Params Params     `json:"params"`
}

// Destination returns the navigation destination for navigation-class
// actions, whichever of URL or Name is set.
func (a Action) Destination() string {
	if a.Params.URL != "" {
		return a.Params.URL
	}
	return a.Params.Name
}

// Validate checks that every parameter the kind requires is present and
// well formed. It runs before any side effect so a malformed action never
// partially executes.
func (a Action) Validate() error {
	if !knownKinds[a.Kind] {
		return fmt.Errorf("%w: unknown action kind %q", ErrInvalidAction, a.Kind)
	}
	p := a.Params
	switch a.Kind {
	case KindClick:
		if p.X < 0 || p.Y < 0 {
			return fmt.Errorf("%w: click requires non-negative coordinates", ErrInvalidAction)
		}
	case KindDrag:
		if p.X < 0 || p.Y < 0 || p.X2 < 0 || p.Y2 < 0 {
			return fmt.Errorf("%w: drag requires non-negative start and end coordinates", ErrInvalidAction)
		}
	case KindType:
		if p.Text == "" {
			return fmt.Errorf("%w: type requires text", ErrInvalidAction)
		}
	case KindKey:
		if strings.TrimSpace(p.Combo) == "" {
			return fmt.Errorf("%w: key requires a combo", ErrInvalidAction)
		}
	case KindScroll:
		if p.Direction != "up" && p.Direction != "down" {
			return fmt.Errorf("%w: scroll direction must be up or down, got %q", ErrInvalidAction, p.Direction)
		}
	case KindOpenApp, KindNavigate:
		if p.Name == "" && p.URL == "" {
			return fmt.Errorf("%w: %s requires a name or url", ErrInvalidAction, a.Kind)
		}
	case KindOpenURL:
		if p.URL == "" {
			return fmt.Errorf("%w: open_url requires a url", ErrInvalidAction)
		}
	case KindFindAndClick:
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("%w: find_and_click requires target text", ErrInvalidAction)
		}
	case KindWindowManage:
		if !knownWindowOps[p.WindowOp] {
			return fmt.Errorf("%w: window_manage requires a valid window_op, got %q", ErrInvalidAction, p.WindowOp)
		}
	case KindWait:
		if p.Ms <= 0 {
			return fmt.Errorf("%w: wait requires a positive ms", ErrInvalidAction)
		}
	case KindDone:
		if p.Summary == "" {
			return fmt.Errorf("%w: done requires a summary", ErrInvalidAction)
		}
	case KindError:
		if p.Message == "" {
			return fmt.Errorf("%w: error requires a message", ErrInvalidAction)
		}
	}
	return nil
}

// Describe renders a short human-readable form used in step summaries and logs.
func (a Action) Describe() string {
	p := a.Params
	switch a.Kind {
	case KindClick:
		return fmt.Sprintf("click(%.0f,%.0f)", p.X, p.Y)
	case KindDrag:
		return fmt.Sprintf("drag(%.0f,%.0f -> %.0f,%.0f)", p.X, p.Y, p.X2, p.Y2)
	case KindType:
		return fmt.Sprintf("type(%d chars)", len([]rune(p.Text)))
	case KindKey:
		return fmt.Sprintf("key(%s)", p.Combo)
	case KindScroll:
		return fmt.Sprintf("scroll(%s)", p.Direction)
	case KindOpenApp, KindNavigate:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Destination())
	case KindOpenURL:
		return fmt.Sprintf("open_url(%s)", p.URL)
	case KindFindAndClick:
		return fmt.Sprintf("find_and_click(%q)", p.Text)
	case KindWindowManage:
		return fmt.Sprintf("window_manage(%s)", p.WindowOp)
	case KindWait:
		return fmt.Sprintf("wait(%dms)", p.Ms)
	case KindDone:
		return "done"
	case KindError:
		return "error"
	}
	return string(a.Kind)
}
