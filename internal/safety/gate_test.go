// File: internal/safety/gate_test.go
package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

func permissivePolicy() Policy {
	p := DefaultPolicy()
	p.SafetyMode = ModeFullAuto
	return p
}

func clickDecision(x, y float64) schemas.Decision {
	return schemas.Decision{
		Thought: "clicking",
		Action: schemas.Action{
			Kind:   schemas.KindClick,
			Params: schemas.Params{X: x, Y: y, Button: "left"},
		},
	}
}

func typeDecision(text string) schemas.Decision {
	return schemas.Decision{
		Thought: "typing",
		Action: schemas.Action{
			Kind:   schemas.KindType,
			Params: schemas.Params{Text: text},
		},
	}
}

func navDecision(url string) schemas.Decision {
	return schemas.Decision{
		Thought: "navigating",
		Action: schemas.Action{
			Kind:   schemas.KindOpenURL,
			Params: schemas.Params{URL: url},
		},
	}
}

func TestCheckBlockedTarget(t *testing.T) {
	t.Parallel()
	policy := permissivePolicy()

	cases := []struct {
		name    string
		target  string
		allowed bool
	}{
		{"exact match", "KeePass", false},
		{"case insensitive", "keepass", false},
		{"target contains entry", "KeePassXC - Passwords.kdbx", false},
		{"unrelated target", "Mozilla Firefox", true},
		{"empty target", "", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := Check(policy, tc.target, clickDecision(10, 10))
			assert.Equal(t, tc.allowed, v.Allowed)
			if !tc.allowed {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestCheckBlockedTargetDeniesEveryKind(t *testing.T) {
	t.Parallel()
	policy := permissivePolicy()

	decisions := []schemas.Decision{
		clickDecision(5, 5),
		typeDecision("hello"),
		navDecision("https://example.com"),
		{Action: schemas.Action{Kind: schemas.KindScroll, Params: schemas.Params{Direction: "down", Amount: 2}}},
		{Action: schemas.Action{Kind: schemas.KindWait, Params: schemas.Params{Ms: 100}}},
	}
	for _, d := range decisions {
		v := Check(policy, "1Password", d)
		assert.False(t, v.Allowed, "kind %s should be denied on a blocked target", d.Action.Kind)
	}
}

func TestCheckDestinationGlobs(t *testing.T) {
	t.Parallel()
	policy := permissivePolicy()

	cases := []struct {
		name    string
		url     string
		allowed bool
	}{
		{"bank subdomain blocked", "https://secure.bank.example/login", false},
		{"bank not a label", "https://bankexample.com/", true},
		{"paypal blocked", "https://www.paypal.com/checkout", false},
		{"coinbase blocked", "https://coinbase.com", false},
		{"plain site allowed", "https://news.ycombinator.com", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := Check(policy, "Firefox", navDecision(tc.url))
			assert.Equal(t, tc.allowed, v.Allowed, "url %s", tc.url)
		})
	}
}

func TestCheckDestinationOnlyGatesNavigation(t *testing.T) {
	t.Parallel()
	policy := permissivePolicy()

	// Typing a blocked URL is not a navigation, so the pattern stage
	// must not fire (the keyword stage does not match it either).
	v := Check(policy, "Firefox", typeDecision("see https://www.paypal.com later"))
	assert.True(t, v.Allowed)
}

func TestCheckSensitiveText(t *testing.T) {
	t.Parallel()
	policy := permissivePolicy()

	cases := []struct {
		name    string
		text    string
		allowed bool
	}{
		{"card with spaces", "4111 1111 1111 1111", false},
		{"card with dashes", "4111-1111-1111-1111", false},
		{"card embedded", "my card is 5500 0000 0000 0004 thanks", false},
		{"prose with small numbers", "Meeting at 4:11 PM on 11/11", true},
		{"blocked keyword", "here is my password: hunter2", false},
		{"keyword case insensitive", "CREDIT CARD on file", false},
		{"national id", "1234 5678 9012", false},
		{"plain text", "hello world, searching for flights", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := Check(policy, "Firefox", typeDecision(tc.text))
			assert.Equal(t, tc.allowed, v.Allowed, "text %q", tc.text)
		})
	}
}

func TestCheckSensitiveTextOnlyGatesTextEntry(t *testing.T) {
	t.Parallel()
	policy := permissivePolicy()

	// A click whose described target mentions a keyword is not text entry.
	d := schemas.Decision{
		Thought: "click the password reveal toggle",
		Action: schemas.Action{
			Kind:   schemas.KindClick,
			Params: schemas.Params{X: 1, Y: 1, Button: "left"},
		},
	}
	v := Check(policy, "Firefox", d)
	assert.True(t, v.Allowed)
}

func TestCheckConfirmationModes(t *testing.T) {
	t.Parallel()

	t.Run("full auto never confirms", func(t *testing.T) {
		t.Parallel()
		policy := permissivePolicy()
		d := schemas.Decision{
			Thought: "about to delete the draft",
			Action:  schemas.Action{Kind: schemas.KindClick, Params: schemas.Params{X: 1, Y: 1, Button: "left"}},
		}
		v := Check(policy, "Firefox", d)
		require.True(t, v.Allowed)
		assert.False(t, v.NeedsConfirmation)
	})

	t.Run("ask-before confirms on trigger in thought", func(t *testing.T) {
		t.Parallel()
		policy := DefaultPolicy()
		require.Equal(t, ModeAskBefore, policy.SafetyMode)
		d := schemas.Decision{
			Thought: "clicking Pay now to complete the purchase",
			Action:  schemas.Action{Kind: schemas.KindClick, Params: schemas.Params{X: 1, Y: 1, Button: "left"}},
		}
		v := Check(policy, "Firefox", d)
		require.True(t, v.Allowed)
		assert.True(t, v.NeedsConfirmation)
		assert.NotEmpty(t, v.ConfirmReason)
	})

	t.Run("ask-before confirms on trigger in click target", func(t *testing.T) {
		t.Parallel()
		policy := DefaultPolicy()
		d := schemas.Decision{
			Thought: "proceeding",
			Action: schemas.Action{
				Kind:   schemas.KindFindAndClick,
				Params: schemas.Params{Text: "Delete account", Button: "left"},
			},
		}
		v := Check(policy, "Firefox", d)
		require.True(t, v.Allowed)
		assert.True(t, v.NeedsConfirmation)
	})

	t.Run("ask-before passes benign actions", func(t *testing.T) {
		t.Parallel()
		policy := DefaultPolicy()
		v := Check(policy, "Firefox", typeDecision("best hiking trails near me"))
		require.True(t, v.Allowed)
		assert.False(t, v.NeedsConfirmation)
	})

	t.Run("watch-only confirms everything", func(t *testing.T) {
		t.Parallel()
		policy := DefaultPolicy()
		policy.SafetyMode = ModeWatchOnly
		v := Check(policy, "Firefox", typeDecision("best hiking trails near me"))
		require.True(t, v.Allowed)
		assert.True(t, v.NeedsConfirmation)
	})
}

func TestCheckIsPure(t *testing.T) {
	t.Parallel()
	policy := DefaultPolicy()
	d := navDecision("https://secure.bank.example/login")

	first := Check(policy, "Firefox", d)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Check(policy, "Firefox", d))
	}
	// Inputs are untouched.
	assert.Equal(t, DefaultPolicy(), policy)
}

func TestGlobMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern   string
		candidate string
		want      bool
	}{
		{"*.bank.*", "secure.bank.example", true},
		{"*.bank.*", "bankexample.com", false},
		{"*paypal.com*", "https://www.paypal.com/home", true},
		{"*paypal.com*", "paypal.org", false},
		{"exact.host", "exact.host", true},
		{"exact.host", "EXACT.HOST", true},
		{"exact.host", "exact.hostname", false},
		{"", "anything", false},
		{"*", "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, globMatch(tc.pattern, tc.candidate),
			"pattern %q candidate %q", tc.pattern, tc.candidate)
	}
}
