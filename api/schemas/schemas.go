// api/schemas/schemas.go
package schemas

import (
	"errors"
	"fmt"
	"time"
)

// Shared sentinel errors. Callers match these with errors.Is.
var (
	// ErrInvalidAction marks an action whose parameters fail validation.
	ErrInvalidAction = errors.New("invalid action")
	// ErrOutOfBounds marks coordinates outside the known surface bounds.
	ErrOutOfBounds = errors.New("coordinates out of surface bounds")
)

// Snapshot is a transient representation of the current surface state,
// held only for the decision cycle that produced it. The payload is the
// raw capture (screenshot bytes or serialized content); Summary is an
// optional cheap textual rendering for oracles that cannot take images.
// Snapshots must never be persisted or retained into step history.
type Snapshot struct {
	Payload      []byte
	Summary      string
	Width        int
	Height       int
	ActiveTarget string // window title, app name or page origin
	TakenAt      time.Time
}

// Fingerprint derives a cheap digest used for stuck detection: payload
// length plus boundary samples. It is recomputed every cycle and never
// reused across cycles.
func (s *Snapshot) Fingerprint() string {
	n := len(s.Payload)
	if n == 0 {
		return fmt.Sprintf("empty:%d", len(s.Summary))
	}
	// Sample a handful of bytes spread across the payload. Identical
	// length plus identical samples is treated as an identical surface.
	const samples = 16
	buf := make([]byte, 0, samples)
	for i := 0; i < samples; i++ {
		buf = append(buf, s.Payload[i*(n-1)/(samples-1)])
	}
	return fmt.Sprintf("%d:%x", n, buf)
}

// Element is a best-effort description of one interactive element on the
// surface. Enumeration may fail without blocking the cycle.
type Element struct {
	Tag      string `json:"tag"`
	Text     string `json:"text,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// Step records one decide-gate-execute cycle. Steps are append-only;
// the only permitted mutation is appending a failure annotation to the
// most recent step's Thought.
type Step struct {
	Ordinal   int        `json:"ordinal"` // 1-based, equals history length at append time
	Thought   string     `json:"thought"`
	Kind      ActionKind `json:"kind"`
	Params    Params     `json:"params"`
	Outcome   string     `json:"outcome,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Summarize renders the step for the oracle's bounded history window.
func (s Step) Summarize() string {
	out := fmt.Sprintf("step %d: %s", s.Ordinal, Action{Kind: s.Kind, Params: s.Params}.Describe())
	if s.Thought != "" {
		out += " — " + s.Thought
	}
	return out
}

// Decision is the oracle's answer for one cycle: exactly one action plus
// the reasoning that led to it.
type Decision struct {
	Thought string `json:"thought"`
	Action  Action `json:"action"`
}

// Request is the logical decision-oracle request. History is a bounded
// window of step summaries in chronological order.
type Request struct {
	Goal     string
	Snapshot *Snapshot
	History  []string
	Elements []Element
}

// RunResult is the loop's terminal output. Every terminal state produces
// one, including stops and internal failures.
type RunResult struct {
	Success   bool   `json:"success"`
	Summary   string `json:"summary"`
	StepCount int    `json:"step_count"`
}

// Verdict is the safety gate's answer for one proposed action.
// Confirmation is advisory metadata surfaced to the operator; only a
// hard deny (Allowed == false) blocks execution.
type Verdict struct {
	Allowed           bool   `json:"allowed"`
	Reason            string `json:"reason,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	ConfirmReason     string `json:"confirm_reason,omitempty"`
}
