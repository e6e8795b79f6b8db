// File: internal/humanoid/humanoid.go

// Package humanoid turns exact input commands into plausibly human ones:
// curved pointer trajectories, variable typing cadence with occasional
// corrected typos, and chunked scrolling. All randomness is bounded by
// the configured min/max pairs so behavior stays verifiable.
package humanoid

import (
	"math/rand"
	"sync"
	"time"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/internal/config"
)

// Humanoid manages the state and execution of human-like interactions.
type Humanoid struct {
	cfg    config.HumanoidConfig
	exec   Executor
	logger *zap.Logger

	mu         sync.Mutex
	currentPos Vector2D
	rng        *rand.Rand
	noiseX     *perlin.Perlin
	noiseY     *perlin.Perlin
	noiseTime  float64
}

// New creates a Humanoid seeded from the clock.
func New(cfg config.HumanoidConfig, exec Executor, logger *zap.Logger) *Humanoid {
	return NewSeeded(cfg, exec, logger, time.Now().UnixNano())
}

// NewSeeded creates a Humanoid with a fixed seed. Deterministic seeding
// exists for tests; production callers use New.
func NewSeeded(cfg config.HumanoidConfig, exec Executor, logger *zap.Logger, seed int64) *Humanoid {
	// Standard Perlin parameters.
	alpha, beta, n := 2.0, 2.0, int32(3)
	return &Humanoid{
		cfg:    cfg,
		exec:   exec,
		logger: logger.Named("humanoid"),
		rng:    rand.New(rand.NewSource(seed)),
		noiseX: perlin.NewPerlin(alpha, beta, n, seed),
		noiseY: perlin.NewPerlin(alpha, beta, n, seed+1), // offset seed for Y noise
	}
}

// Position returns the emulator's view of the cursor position.
func (h *Humanoid) Position() Vector2D {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentPos
}

// SetPosition resets the cursor state, e.g. after a navigation.
func (h *Humanoid) SetPosition(pos Vector2D) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentPos = pos
}

// randBetween draws a uniform int from [min, max].
func (h *Humanoid) randBetween(min, max int) int {
	if max <= min {
		return min
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return min + h.rng.Intn(max-min+1)
}

// randDuration draws a uniform duration from [minMs, maxMs] milliseconds.
func (h *Humanoid) randDuration(minMs, maxMs int) time.Duration {
	return time.Duration(h.randBetween(minMs, maxMs)) * time.Millisecond
}

// randFloat draws a uniform float from [-1, 1).
func (h *Humanoid) randFloat() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64()*2 - 1
}

// chance reports true with probability p.
func (h *Humanoid) chance(p float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64() < p
}
