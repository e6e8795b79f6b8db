// api/schemas/events.go
package schemas

import "time"

// EventType identifies one lifecycle event variant.
type EventType string

const (
	EventStart   EventType = "start"
	EventStep    EventType = "step"
	EventGate    EventType = "gate" // a safety-gate denial or confirmation advisory
	EventDone    EventType = "done"
	EventError   EventType = "error"
	EventStopped EventType = "stopped"
)

// Event is one entry in the ordered lifecycle stream a run produces.
// Events are emitted synchronously as each state transition occurs;
// consumers must not assume any event other than done/error/stopped
// implies termination.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Goal      string    `json:"goal,omitempty"`    // start
	Step      *Step     `json:"step,omitempty"`    // step
	Verdict   *Verdict  `json:"verdict,omitempty"` // gate
	Summary   string    `json:"summary,omitempty"` // done / error / stopped reason
	StepCount int       `json:"step_count,omitempty"`
	At        time.Time `json:"at"`
}

// EventSink receives lifecycle events. Publish is called synchronously
// from the loop goroutine, so ordering per run is the call order; sinks
// must not block for long.
type EventSink interface {
	Publish(ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ev Event)

func (f EventSinkFunc) Publish(ev Event) { f(ev) }
