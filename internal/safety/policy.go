// File: internal/safety/policy.go
package safety

import "fmt"

// SafetyMode controls how eagerly the gate asks for operator confirmation.
type SafetyMode string

const (
	// ModeFullAuto never requests confirmation.
	ModeFullAuto SafetyMode = "full-auto"
	// ModeAskBefore requests confirmation when a trigger keyword appears
	// in the step rationale or, for clicks, the described target text.
	ModeAskBefore SafetyMode = "ask-before"
	// ModeWatchOnly requests confirmation for every action.
	ModeWatchOnly SafetyMode = "watch-only"
)

// Policy is the single global safety policy. It is loaded from the vault
// once per run; the gate only ever sees an in-memory value.
type Policy struct {
	BlockedTargets         []string   `json:"blocked_targets"`
	BlockedContentPatterns []string   `json:"blocked_content_patterns"`
	BlockedKeywords        []string   `json:"blocked_keywords"`
	SafetyMode             SafetyMode `json:"safety_mode"`
	ConfirmationTriggers   []string   `json:"confirmation_triggers"`
	MaxSteps               int        `json:"max_steps"`
}

// DefaultPolicy returns the built-in policy. Saved overrides are merged
// over these defaults field by field: an absent field keeps the default,
// a present field (even an empty list) replaces it.
func DefaultPolicy() Policy {
	return Policy{
		BlockedTargets: []string{
			"KeePass", "1Password", "Bitwarden", "LastPass",
		},
		BlockedContentPatterns: []string{
			"*.bank.*",
			"*paypal.com*",
			"*coinbase.com*",
		},
		BlockedKeywords: []string{
			"password", "credit card", "cvv", "social security",
		},
		SafetyMode: ModeAskBefore,
		ConfirmationTriggers: []string{
			"purchase", "buy", "pay", "delete", "remove", "send", "submit order",
		},
		MaxSteps: 40,
	}
}

// Validate reports whether the policy is enforceable.
func (p Policy) Validate() error {
	switch p.SafetyMode {
	case ModeFullAuto, ModeAskBefore, ModeWatchOnly:
	default:
		return fmt.Errorf("unknown safety mode %q", p.SafetyMode)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", p.MaxSteps)
	}
	return nil
}
