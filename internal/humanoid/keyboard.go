// File: internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"fmt"
	"time"
	"unicode"
)

// keyBackspace is the control character the input layer maps to Backspace.
const keyBackspace = "\b"

// keyboardNeighbors maps each key to its physical QWERTY neighbors, used
// to pick plausible mistyped characters.
var keyboardNeighbors = map[rune]string{
	'1': "2q`", '2': "13wq", '3': "24we", '4': "35er", '5': "46rt", '6': "57ty",
	'7': "68yu", '8': "79ui", '9': "80io", '0': "9-op",
	'q': "wa1s", 'w': "qase23", 'e': "wsdr34", 'r': "edft45", 't': "rfgy56",
	'y': "tghu67", 'u': "yhji78", 'i': "ujko89", 'o': "iklp90", 'p': "ol;0-",
	'a': "qwsz", 's': "awedxz", 'd': "serfcx", 'f': "drtgvc", 'g': "ftyhbv",
	'h': "gyujnb", 'j': "huikmn", 'k': "jiol,m", 'l': "kop;.",
	'z': "asx", 'x': "zsdc", 'c': "xdfv", 'v': "cfgb", 'b': "vghn", 'n': "bhjm", 'm': "njk,",
}

// TypeText types the text into the focused element one character at a
// time: variable inter-key delays, elongated pauses after punctuation,
// occasional corrected typos and rare thinking pauses. A positive
// perKeyDelay overrides the configured delay range with a fixed cadence
// and disables typos.
func (h *Humanoid) TypeText(ctx context.Context, text string, perKeyDelay time.Duration) error {
	runes := []rune(text)
	fixedCadence := perKeyDelay > 0

	for i, char := range runes {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !fixedCadence && h.chance(h.cfg.ThinkPauseRate) {
			if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.ThinkPauseMinMs, h.cfg.ThinkPauseMaxMs)); err != nil {
				return err
			}
		}

		if !fixedCadence && h.chance(h.cfg.TypoRate) {
			if err := h.typoAndCorrect(ctx, char); err != nil {
				return err
			}
			continue
		}

		if err := h.exec.SendKeys(ctx, string(char)); err != nil {
			return fmt.Errorf("failed to send key %q: %w", char, err)
		}

		if i == len(runes)-1 {
			break
		}
		delay := perKeyDelay
		if !fixedCadence {
			delay = h.keyDelay(char)
		}
		if err := h.exec.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

// PressKey forwards a key combo (e.g. "ctrl+shift+t") to the input layer
// after a short preparation pause. Chords are not typed character-wise.
func (h *Humanoid) PressKey(ctx context.Context, combo string) error {
	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.KeyDelayMinMs, h.cfg.KeyDelayMaxMs)); err != nil {
		return err
	}
	return h.exec.SendKeys(ctx, combo)
}

// keyDelay draws an inter-key delay, elongated after punctuation and
// whitespace where humans naturally pause.
func (h *Humanoid) keyDelay(prev rune) time.Duration {
	d := h.randDuration(h.cfg.KeyDelayMinMs, h.cfg.KeyDelayMaxMs)
	if unicode.IsPunct(prev) || unicode.IsSpace(prev) {
		d = time.Duration(float64(d) * h.cfg.PunctuationFactor)
	}
	return d
}

// typoAndCorrect types a neighboring key by mistake, notices after a
// recognition pause, erases it and types the intended character. Keys
// with no mapped neighbor are typed straight.
func (h *Humanoid) typoAndCorrect(ctx context.Context, intended rune) error {
	neighbors, ok := keyboardNeighbors[unicode.ToLower(intended)]
	if !ok || len(neighbors) == 0 {
		return h.exec.SendKeys(ctx, string(intended))
	}

	wrong := rune(neighbors[h.randBetween(0, len(neighbors)-1)])
	if unicode.IsUpper(intended) {
		wrong = unicode.ToUpper(wrong)
	}

	if err := h.exec.SendKeys(ctx, string(wrong)); err != nil {
		return err
	}
	// Recognition pause before the correction.
	if err := h.exec.Sleep(ctx, h.randDuration(h.cfg.CorrectionPauseMin, h.cfg.CorrectionPauseMax)); err != nil {
		return err
	}
	if err := h.exec.SendKeys(ctx, keyBackspace); err != nil {
		return err
	}
	if err := h.exec.Sleep(ctx, h.keyDelay(intended)); err != nil {
		return err
	}
	return h.exec.SendKeys(ctx, string(intended))
}
