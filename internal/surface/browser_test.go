// File: internal/surface/browser_test.go
package surface

import (
	"testing"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCombo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		combo     string
		wantKey   string
		wantMods  input.Modifier
		expectErr bool
	}{
		{combo: "ctrl+shift+t", wantKey: "t", wantMods: input.ModifierCtrl | input.ModifierShift},
		{combo: "ctrl+l", wantKey: "l", wantMods: input.ModifierCtrl},
		{combo: "alt+tab", wantKey: kb.Tab, wantMods: input.ModifierAlt},
		{combo: "meta+d", wantKey: "d", wantMods: input.ModifierMeta},
		{combo: "cmd+d", wantKey: "d", wantMods: input.ModifierMeta},
		{combo: "enter", wantKey: kb.Enter},
		{combo: "Escape", wantKey: kb.Escape},
		{combo: "PageDown", wantKey: kb.PageDown},
		{combo: "ctrl+shift+Enter", wantKey: kb.Enter, wantMods: input.ModifierCtrl | input.ModifierShift},
		{combo: "  space  ", wantKey: " "},
		{combo: "", expectErr: true},
		{combo: "ctrl+", expectErr: true},
		{combo: "bogus+t", expectErr: true},
		{combo: "ctrl+notakey", expectErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.combo, func(t *testing.T) {
			t.Parallel()
			key, mods, err := parseCombo(tc.combo)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKey, key)
			assert.Equal(t, tc.wantMods, mods)
		})
	}
}

func TestActiveTarget(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Checkout - Shop", activeTarget("Checkout - Shop", "https://shop.example"))
	assert.Equal(t, "https://shop.example", activeTarget("", "https://shop.example"))
	assert.Equal(t, "https://shop.example", activeTarget("   ", "https://shop.example"))
}
