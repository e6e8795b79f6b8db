// File: internal/humanoid/keyboard_test.go
package humanoid

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTextFixedCadence(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.TypoRate = 1.0 // must be ignored on fixed cadence
	h, exec := newTestHumanoid(cfg, 17)

	require.NoError(t, h.TypeText(context.Background(), "abc", 50*time.Millisecond))

	// Exactly the intended characters, in order, no corrections.
	assert.Equal(t, []string{"a", "b", "c"}, exec.keys)
	// Two inter-key sleeps at the fixed cadence.
	require.Len(t, exec.sleeps, 2)
	for _, d := range exec.sleeps {
		assert.Equal(t, 50*time.Millisecond, d)
	}
}

func TestTypeTextNaturalCadenceWithinBounds(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.TypoRate = 0
	cfg.ThinkPauseRate = 0
	h, exec := newTestHumanoid(cfg, 23)

	require.NoError(t, h.TypeText(context.Background(), "hello world", 0))

	var typed strings.Builder
	for _, k := range exec.keys {
		typed.WriteString(k)
	}
	assert.Equal(t, "hello world", typed.String())

	minDelay := time.Duration(cfg.KeyDelayMinMs) * time.Millisecond
	maxDelay := time.Duration(float64(cfg.KeyDelayMaxMs)*cfg.PunctuationFactor) * time.Millisecond
	for _, d := range exec.sleeps {
		assert.GreaterOrEqual(t, d, minDelay)
		assert.LessOrEqual(t, d, maxDelay)
	}
}

func TestTypeTextTypoIsCorrected(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.TypoRate = 1.0
	cfg.ThinkPauseRate = 0
	h, exec := newTestHumanoid(cfg, 29)

	require.NoError(t, h.TypeText(context.Background(), "a", 0))

	// Wrong neighbor, backspace, then the intended character.
	require.Len(t, exec.keys, 3)
	wrong := exec.keys[0]
	assert.NotEqual(t, "a", wrong)
	assert.Contains(t, keyboardNeighbors['a'], wrong)
	assert.Equal(t, keyBackspace, exec.keys[1])
	assert.Equal(t, "a", exec.keys[2])
}

func TestTypeTextTypoPreservesCase(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.TypoRate = 1.0
	cfg.ThinkPauseRate = 0
	h, exec := newTestHumanoid(cfg, 37)

	require.NoError(t, h.TypeText(context.Background(), "A", 0))

	require.Len(t, exec.keys, 3)
	assert.Equal(t, strings.ToUpper(exec.keys[0]), exec.keys[0])
	assert.Equal(t, "A", exec.keys[2])
}

func TestTypeTextCharWithoutNeighborsTypesStraight(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.TypoRate = 1.0
	cfg.ThinkPauseRate = 0
	h, exec := newTestHumanoid(cfg, 41)

	// Space has no neighbor entry so a forced typo degrades to a plain key.
	require.NoError(t, h.TypeText(context.Background(), " ", 0))
	assert.Equal(t, []string{" "}, exec.keys)
}

func TestTypeTextThinkPause(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.TypoRate = 0
	cfg.ThinkPauseRate = 1.0
	h, exec := newTestHumanoid(cfg, 43)

	require.NoError(t, h.TypeText(context.Background(), "ab", 0))

	// Every character is preceded by a long pause in the configured range.
	minThink := time.Duration(cfg.ThinkPauseMinMs) * time.Millisecond
	maxThink := time.Duration(cfg.ThinkPauseMaxMs) * time.Millisecond
	var longPauses int
	for _, d := range exec.sleeps {
		if d >= minThink && d <= maxThink {
			longPauses++
		}
	}
	assert.GreaterOrEqual(t, longPauses, 2)
	assert.Equal(t, []string{"a", "b"}, exec.keys)
}

func TestTypeTextHonorsContextCancellation(t *testing.T) {
	t.Parallel()
	h, _ := newTestHumanoid(testConfig(), 47)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.TypeText(ctx, "never typed", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPressKeySendsComboIntact(t *testing.T) {
	t.Parallel()
	h, exec := newTestHumanoid(testConfig(), 53)

	require.NoError(t, h.PressKey(context.Background(), "ctrl+shift+t"))
	assert.Equal(t, []string{"ctrl+shift+t"}, exec.keys)
}
