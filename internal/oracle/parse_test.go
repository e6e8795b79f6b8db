// File: internal/oracle/parse_test.go
package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

func TestParseDecisionVariants(t *testing.T) {
	t.Parallel()

	rawClick := `{"thought": "press the button", "action": {"kind": "click", "params": {"x": 120, "y": 340, "button": "left"}}}`

	cases := []struct {
		name     string
		response string
	}{
		{"bare json", rawClick},
		{"fenced json", "```json\n" + rawClick + "\n```"},
		{"fenced without language", "```\n" + rawClick + "\n```"},
		{"prose around json", "Sure, here is my choice:\n" + rawClick + "\nLet me know."},
		{"leading whitespace", "\n\n   " + rawClick},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := parseDecision(tc.response)
			require.NoError(t, err)
			assert.Equal(t, "press the button", d.Thought)
			assert.Equal(t, schemas.KindClick, d.Action.Kind)
			assert.Equal(t, 120.0, d.Action.Params.X)
			assert.Equal(t, 340.0, d.Action.Params.Y)
		})
	}
}

func TestParseDecisionRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
	}{
		{"empty", ""},
		{"no json at all", "I cannot help with that."},
		{"broken json", `{"thought": "x", "action": {`},
		{"unknown kind", `{"thought": "x", "action": {"kind": "teleport", "params": {}}}`},
		{"missing required param", `{"thought": "x", "action": {"kind": "open_url", "params": {}}}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseDecision(tc.response)
			assert.Error(t, err)
		})
	}
}

func TestParseDecisionTerminalKinds(t *testing.T) {
	t.Parallel()

	d, err := parseDecision(`{"thought": "all set", "action": {"kind": "done", "params": {"summary": "booked the flight"}}}`)
	require.NoError(t, err)
	assert.Equal(t, schemas.KindDone, d.Action.Kind)
	assert.Equal(t, "booked the flight", d.Action.Params.Summary)

	d, err = parseDecision(`{"thought": "blocked", "action": {"kind": "error", "params": {"message": "login wall"}}}`)
	require.NoError(t, err)
	assert.Equal(t, schemas.KindError, d.Action.Kind)
}

func TestCoerceToErrorTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("z", 2000)
	d := coerceToError(long, 500)

	assert.Equal(t, schemas.KindError, d.Action.Kind)
	assert.True(t, strings.HasSuffix(d.Action.Params.Message, "..."))
	// prefix + 500 raw chars + ellipsis
	assert.LessOrEqual(t, len(d.Action.Params.Message), len("unusable oracle response: ")+503)
	require.NoError(t, d.Action.Validate())
}

func TestTruncateDefaultsWhenUnset(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 600)
	assert.Len(t, truncate(long, 0), 503)
	assert.Equal(t, "short", truncate("short", 0))
}
