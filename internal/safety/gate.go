// File: internal/safety/gate.go
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

// cardPattern matches payment-card-like digit sequences: four groups of
// four digits plus a final group of 1-7 digits, with optional space or
// dash separators. Plain prose numbers ("4:11 PM on 11/11") do not match
// because they never form four-digit runs.
var cardPattern = regexp.MustCompile(`(?:\d{4}[ -]?){3}\d{1,7}`)

// nationalIDPattern matches 12-digit identifiers grouped 4-4-4 with
// mandatory separators (Aadhaar-style).
var nationalIDPattern = regexp.MustCompile(`\b\d{4}[ -]\d{4}[ -]\d{4}\b`)

// Check evaluates a proposed decision against the policy. It is a pure
// function: identical inputs always yield the identical verdict, and it
// never mutates its arguments. Evaluation short-circuits at the first
// denial; confirmation is computed only for allowed actions.
func Check(policy Policy, activeTarget string, decision schemas.Decision) schemas.Verdict {
	action := decision.Action

	// 1. Target block: the active surface identity against blocked targets.
	if hit, entry := matchTarget(policy.BlockedTargets, activeTarget); hit {
		return schemas.Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("active target matches blocked entry %q", entry),
		}
	}

	// 2. Content-destination block for navigation-class actions.
	if action.Kind.IsNavigation() {
		dest := action.Destination()
		for _, pattern := range policy.BlockedContentPatterns {
			if globMatch(pattern, dest) {
				return schemas.Verdict{
					Allowed: false,
					Reason:  fmt.Sprintf("destination matches blocked pattern %q", pattern),
				}
			}
		}
	}

	// 3. Sensitive-content block for text entry.
	if action.Kind.IsTextEntry() {
		text := action.Params.Text
		lower := strings.ToLower(text)
		for _, kw := range policy.BlockedKeywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return schemas.Verdict{
					Allowed: false,
					Reason:  fmt.Sprintf("text contains blocked keyword %q", kw),
				}
			}
		}
		if cardPattern.MatchString(text) {
			return schemas.Verdict{
				Allowed: false,
				Reason:  "text matches a payment card pattern",
			}
		}
		if nationalIDPattern.MatchString(text) {
			return schemas.Verdict{
				Allowed: false,
				Reason:  "text matches a national ID pattern",
			}
		}
	}

	// 4. Confirmation requirement by safety mode. Advisory only: the
	// loop surfaces it to the operator, it does not block execution.
	verdict := schemas.Verdict{Allowed: true}
	switch policy.SafetyMode {
	case ModeWatchOnly:
		verdict.NeedsConfirmation = true
		verdict.ConfirmReason = "watch-only mode confirms every action"
	case ModeAskBefore:
		if trigger, ok := findTrigger(policy.ConfirmationTriggers, decision); ok {
			verdict.NeedsConfirmation = true
			verdict.ConfirmReason = fmt.Sprintf("matched trigger %q", trigger)
		}
	}
	return verdict
}

// matchTarget performs the case-insensitive exact-or-substring match used
// for blocked targets.
func matchTarget(blocked []string, active string) (bool, string) {
	if active == "" {
		return false, ""
	}
	lowerActive := strings.ToLower(active)
	for _, entry := range blocked {
		if entry == "" {
			continue
		}
		lowerEntry := strings.ToLower(entry)
		if lowerActive == lowerEntry ||
			strings.Contains(lowerActive, lowerEntry) ||
			strings.Contains(lowerEntry, lowerActive) {
			return true, entry
		}
	}
	return false, ""
}

// findTrigger scans the rationale text and, for click-class actions, the
// described target text, for configured trigger keywords.
func findTrigger(triggers []string, decision schemas.Decision) (string, bool) {
	haystacks := []string{strings.ToLower(decision.Thought)}
	switch decision.Action.Kind {
	case schemas.KindClick, schemas.KindFindAndClick:
		haystacks = append(haystacks, strings.ToLower(decision.Action.Params.Text))
	}
	for _, trigger := range triggers {
		if trigger == "" {
			continue
		}
		lower := strings.ToLower(trigger)
		for _, hay := range haystacks {
			if strings.Contains(hay, lower) {
				return trigger, true
			}
		}
	}
	return "", false
}

// globMatch compiles a glob-style pattern (`*` wildcard) to an anchored,
// case-insensitive regular expression and matches the candidate against it.
func globMatch(pattern, candidate string) bool {
	if pattern == "" || candidate == "" {
		return false
	}
	var b strings.Builder
	b.WriteString("(?i)^")
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(candidate)
}
