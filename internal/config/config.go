// Package config provides application configuration with multi-source priority.
//
// Sources (highest to lowest):
//  1. Environment variables (CHAT_MODEL, CHAT_PORT, MAX_HISTORY_MESSAGES,
//     SESSION_TTL_HOURS)
//  2. Optional config.yaml in the working directory
//  3. Defaults
//
// Validation is fail-fast with sentinel errors so callers can use errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the chat model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidPort indicates the listen port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidMaxHistory indicates the history cap is out of range.
	ErrInvalidMaxHistory = errors.New("invalid max history messages")

	// ErrInvalidSessionTTL indicates the session TTL is not positive.
	ErrInvalidSessionTTL = errors.New("invalid session TTL")
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "googleai/gemini-2.5-flash"

	// DefaultPort is the HTTP listen port.
	DefaultPort = 3003

	// DefaultMaxHistoryMessages is the per-session history cap.
	DefaultMaxHistoryMessages = 20

	// MaxAllowedHistoryMessages bounds the cap to prevent OOM.
	MaxAllowedHistoryMessages = 1000

	// DefaultSessionTTLHours is how long an idle session survives.
	DefaultSessionTTLHours = 12
)

// Config stores application configuration.
type Config struct {
	// Model is the completion model identifier, provider-qualified
	// (e.g. "googleai/gemini-2.5-flash").
	Model string `mapstructure:"model"`

	// Port is the HTTP listen port.
	Port int `mapstructure:"port"`

	// MaxHistoryMessages caps per-session conversation history.
	MaxHistoryMessages int `mapstructure:"max_history_messages"`

	// SessionTTLHours is the idle lifetime of a session before eviction.
	SessionTTLHours int `mapstructure:"session_ttl_hours"`
}

// Load loads configuration from defaults, an optional config.yaml in the
// working directory, and environment overrides, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults plus env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", DefaultModel)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("max_history_messages", DefaultMaxHistoryMessages)
	v.SetDefault("session_ttl_hours", DefaultSessionTTLHours)
}

func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys can't fail to bind; a panic here is a programming error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model", "CHAT_MODEL")
	mustBind("port", "CHAT_PORT")
	mustBind("max_history_messages", "MAX_HISTORY_MESSAGES")
	mustBind("session_ttl_hours", "SESSION_TTL_HOURS")

	// NOTE: GEMINI_API_KEY is read directly by the genkit googlegenai plugin,
	// not via viper. Validate() checks its presence.
}

// Validate checks all configuration values, returning a wrapped sentinel
// error for the first violation found.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalidModelName)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPort, c.Port)
	}
	if c.MaxHistoryMessages < 1 || c.MaxHistoryMessages > MaxAllowedHistoryMessages {
		return fmt.Errorf("%w: %d (must be 1-%d)",
			ErrInvalidMaxHistory, c.MaxHistoryMessages, MaxAllowedHistoryMessages)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("%w: %d (must be >= 1 hour)", ErrInvalidSessionTTL, c.SessionTTLHours)
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is required", ErrMissingAPIKey)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SessionTTL returns the idle session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
