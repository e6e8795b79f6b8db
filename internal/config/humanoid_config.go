// File: internal/config/humanoid_config.go
// Tunable parameters for the humanoid interaction simulation. Every random
// quantity is bounded by an explicit min/max pair so behavior stays
// verifiable through range assertions.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// HumanoidConfig controls the motion emulation layer.
type HumanoidConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Pointer trajectory.
	MinPathSteps     int     `mapstructure:"min_path_steps" yaml:"min_path_steps"`
	MaxPathSteps     int     `mapstructure:"max_path_steps" yaml:"max_path_steps"`
	JitterPx         float64 `mapstructure:"jitter_px" yaml:"jitter_px"`
	MaxPathDeviation float64 `mapstructure:"max_path_deviation" yaml:"max_path_deviation"`
	PerlinAmplitude  float64 `mapstructure:"perlin_amplitude" yaml:"perlin_amplitude"`
	MinStepDelayMs   int     `mapstructure:"min_step_delay_ms" yaml:"min_step_delay_ms"`
	MaxStepDelayMs   int     `mapstructure:"max_step_delay_ms" yaml:"max_step_delay_ms"`

	// Click model.
	PreClickPauseMinMs int `mapstructure:"pre_click_pause_min_ms" yaml:"pre_click_pause_min_ms"`
	PreClickPauseMaxMs int `mapstructure:"pre_click_pause_max_ms" yaml:"pre_click_pause_max_ms"`
	ClickHoldMinMs     int `mapstructure:"click_hold_min_ms" yaml:"click_hold_min_ms"`
	ClickHoldMaxMs     int `mapstructure:"click_hold_max_ms" yaml:"click_hold_max_ms"`
	DoubleClickGapMin  int `mapstructure:"double_click_gap_min_ms" yaml:"double_click_gap_min_ms"`
	DoubleClickGapMax  int `mapstructure:"double_click_gap_max_ms" yaml:"double_click_gap_max_ms"`

	// Typing cadence.
	KeyDelayMinMs      int     `mapstructure:"key_delay_min_ms" yaml:"key_delay_min_ms"`
	KeyDelayMaxMs      int     `mapstructure:"key_delay_max_ms" yaml:"key_delay_max_ms"`
	PunctuationFactor  float64 `mapstructure:"punctuation_factor" yaml:"punctuation_factor"`
	TypoRate           float64 `mapstructure:"typo_rate" yaml:"typo_rate"`
	ThinkPauseRate     float64 `mapstructure:"think_pause_rate" yaml:"think_pause_rate"`
	ThinkPauseMinMs    int     `mapstructure:"think_pause_min_ms" yaml:"think_pause_min_ms"`
	ThinkPauseMaxMs    int     `mapstructure:"think_pause_max_ms" yaml:"think_pause_max_ms"`
	CorrectionPauseMin int     `mapstructure:"correction_pause_min_ms" yaml:"correction_pause_min_ms"`
	CorrectionPauseMax int     `mapstructure:"correction_pause_max_ms" yaml:"correction_pause_max_ms"`

	// Scrolling.
	ScrollChunksMin     int `mapstructure:"scroll_chunks_min" yaml:"scroll_chunks_min"`
	ScrollChunksMax     int `mapstructure:"scroll_chunks_max" yaml:"scroll_chunks_max"`
	ScrollChunkDelayMin int `mapstructure:"scroll_chunk_delay_min_ms" yaml:"scroll_chunk_delay_min_ms"`
	ScrollChunkDelayMax int `mapstructure:"scroll_chunk_delay_max_ms" yaml:"scroll_chunk_delay_max_ms"`
}

// setHumanoidDefaults centralizes the defaults under the browser.humanoid key.
func setHumanoidDefaults(v *viper.Viper) {
	v.SetDefault("browser.humanoid.enabled", true)

	v.SetDefault("browser.humanoid.min_path_steps", 20)
	v.SetDefault("browser.humanoid.max_path_steps", 35)
	v.SetDefault("browser.humanoid.jitter_px", 2.0)
	v.SetDefault("browser.humanoid.max_path_deviation", 40.0)
	v.SetDefault("browser.humanoid.perlin_amplitude", 1.2)
	v.SetDefault("browser.humanoid.min_step_delay_ms", 4)
	v.SetDefault("browser.humanoid.max_step_delay_ms", 28)

	v.SetDefault("browser.humanoid.pre_click_pause_min_ms", 40)
	v.SetDefault("browser.humanoid.pre_click_pause_max_ms", 120)
	v.SetDefault("browser.humanoid.click_hold_min_ms", 35)
	v.SetDefault("browser.humanoid.click_hold_max_ms", 110)
	v.SetDefault("browser.humanoid.double_click_gap_min_ms", 60)
	v.SetDefault("browser.humanoid.double_click_gap_max_ms", 180)

	v.SetDefault("browser.humanoid.key_delay_min_ms", 40)
	v.SetDefault("browser.humanoid.key_delay_max_ms", 160)
	v.SetDefault("browser.humanoid.punctuation_factor", 1.8)
	v.SetDefault("browser.humanoid.typo_rate", 0.03)
	v.SetDefault("browser.humanoid.think_pause_rate", 0.02)
	v.SetDefault("browser.humanoid.think_pause_min_ms", 350)
	v.SetDefault("browser.humanoid.think_pause_max_ms", 1200)
	v.SetDefault("browser.humanoid.correction_pause_min_ms", 120)
	v.SetDefault("browser.humanoid.correction_pause_max_ms", 400)

	v.SetDefault("browser.humanoid.scroll_chunks_min", 3)
	v.SetDefault("browser.humanoid.scroll_chunks_max", 7)
	v.SetDefault("browser.humanoid.scroll_chunk_delay_min_ms", 25)
	v.SetDefault("browser.humanoid.scroll_chunk_delay_max_ms", 90)
}

// Validate rejects inverted or degenerate min/max pairs.
func (h *HumanoidConfig) Validate() error {
	pairs := []struct {
		name     string
		min, max int
	}{
		{"path_steps", h.MinPathSteps, h.MaxPathSteps},
		{"step_delay_ms", h.MinStepDelayMs, h.MaxStepDelayMs},
		{"pre_click_pause_ms", h.PreClickPauseMinMs, h.PreClickPauseMaxMs},
		{"click_hold_ms", h.ClickHoldMinMs, h.ClickHoldMaxMs},
		{"double_click_gap_ms", h.DoubleClickGapMin, h.DoubleClickGapMax},
		{"key_delay_ms", h.KeyDelayMinMs, h.KeyDelayMaxMs},
		{"think_pause_ms", h.ThinkPauseMinMs, h.ThinkPauseMaxMs},
		{"correction_pause_ms", h.CorrectionPauseMin, h.CorrectionPauseMax},
		{"scroll_chunks", h.ScrollChunksMin, h.ScrollChunksMax},
		{"scroll_chunk_delay_ms", h.ScrollChunkDelayMin, h.ScrollChunkDelayMax},
	}
	for _, p := range pairs {
		if p.min < 0 || p.max < p.min {
			return fmt.Errorf("%s bounds invalid: min=%d max=%d", p.name, p.min, p.max)
		}
	}
	if h.MinPathSteps < 2 {
		return fmt.Errorf("min_path_steps must be at least 2")
	}
	if h.TypoRate < 0 || h.TypoRate > 0.5 {
		return fmt.Errorf("typo_rate must be within [0, 0.5]")
	}
	if h.JitterPx < 0 || h.MaxPathDeviation < 0 {
		return fmt.Errorf("jitter_px and max_path_deviation must be non-negative")
	}
	return nil
}
