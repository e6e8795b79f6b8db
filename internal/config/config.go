// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Oracle  OracleConfig  `mapstructure:"oracle" yaml:"oracle"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Vault   VaultConfig   `mapstructure:"vault" yaml:"vault"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// AgentConfig tunes the perceive/decide/act loop.
type AgentConfig struct {
	MaxSteps           int           `mapstructure:"max_steps" yaml:"max_steps"`
	HistoryWindow      int           `mapstructure:"history_window" yaml:"history_window"`
	PerceiveRetries    int           `mapstructure:"perceive_retries" yaml:"perceive_retries"`
	PerceiveRetryDelay time.Duration `mapstructure:"perceive_retry_delay" yaml:"perceive_retry_delay"`
	DecideAttempts     int           `mapstructure:"decide_attempts" yaml:"decide_attempts"`
	ExecuteRetries     int           `mapstructure:"execute_retries" yaml:"execute_retries"`
	ExecuteRetryDelay  time.Duration `mapstructure:"execute_retry_delay" yaml:"execute_retry_delay"`
	SettleShort        time.Duration `mapstructure:"settle_short" yaml:"settle_short"`
	SettleNavigation   time.Duration `mapstructure:"settle_navigation" yaml:"settle_navigation"`
	PausePollInterval  time.Duration `mapstructure:"pause_poll_interval" yaml:"pause_poll_interval"`
	StuckThreshold     int           `mapstructure:"stuck_threshold" yaml:"stuck_threshold"`
}

// OracleConfig configures the decision oracle client.
type OracleConfig struct {
	Provider          string        `mapstructure:"provider" yaml:"provider"`
	Model             string        `mapstructure:"model" yaml:"model"`
	APIKey            string        `mapstructure:"api_key" yaml:"-"`
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout        time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature       float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxOutputTokens   int           `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	RequestsPerMinute float64       `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	MaxRawResponse    int           `mapstructure:"max_raw_response" yaml:"max_raw_response"`
}

// BrowserConfig holds settings for the browser surface.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Humanoid        HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
}

// VaultConfig locates the durable policy record.
type VaultConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// JournalConfig configures the local run journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// DataDir returns the default aviator data directory under the user's home.
func DataDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aviator"), nil
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "aviator")
	v.SetDefault("logger.log_file", "aviator.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Agent loop --
	v.SetDefault("agent.max_steps", 40)
	v.SetDefault("agent.history_window", 10)
	v.SetDefault("agent.perceive_retries", 2)
	v.SetDefault("agent.perceive_retry_delay", "500ms")
	v.SetDefault("agent.decide_attempts", 3)
	v.SetDefault("agent.execute_retries", 2)
	v.SetDefault("agent.execute_retry_delay", "750ms")
	v.SetDefault("agent.settle_short", "800ms")
	v.SetDefault("agent.settle_navigation", "3s")
	v.SetDefault("agent.pause_poll_interval", "250ms")
	v.SetDefault("agent.stuck_threshold", 3)

	// -- Oracle --
	v.SetDefault("oracle.provider", "gemini")
	v.SetDefault("oracle.model", "gemini-2.5-flash")
	v.SetDefault("oracle.api_timeout", "60s")
	v.SetDefault("oracle.temperature", 0.2)
	v.SetDefault("oracle.max_output_tokens", 2048)
	v.SetDefault("oracle.requests_per_minute", 30)
	v.SetDefault("oracle.max_raw_response", 500)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	setHumanoidDefaults(v)

	// -- Vault / Journal --
	v.SetDefault("vault.path", "")   // directory holding policy.json; empty ⇒ <data dir>
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "") // empty ⇒ <data dir>/journal.db
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("oracle.api_key", "AVIATOR_ORACLE_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be a positive integer")
	}
	if c.Agent.StuckThreshold < 2 {
		return fmt.Errorf("agent.stuck_threshold must be at least 2")
	}
	if c.Agent.HistoryWindow <= 0 {
		return fmt.Errorf("agent.history_window must be a positive integer")
	}
	if c.Agent.DecideAttempts <= 0 {
		return fmt.Errorf("agent.decide_attempts must be a positive integer")
	}
	if c.Oracle.APITimeout <= 0 {
		return fmt.Errorf("oracle.api_timeout must be a positive duration")
	}
	if err := c.Browser.Humanoid.Validate(); err != nil {
		return fmt.Errorf("browser.humanoid configuration invalid: %w", err)
	}
	return nil
}
