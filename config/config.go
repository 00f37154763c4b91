// Package config loads application settings from an optional YAML file and
// ASCEND_-prefixed environment variables, with sensible defaults for every
// knob. A Config is read once at startup and treated as immutable.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ascend-ai/ascend/core"
)

// Supported model providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config is the full application configuration.
type Config struct {
	Provider string `mapstructure:"provider"`

	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	APIKey      string  `mapstructure:"api_key"`

	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`

	HistoryBackend string `mapstructure:"history_backend"` // "memory" or "sqlite"
	HistoryPath    string `mapstructure:"history_path"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "json" or "text"
}

// Load reads configuration from path (optional; empty means env and defaults
// only) and the environment. Environment variables use the ASCEND_ prefix,
// e.g. ASCEND_PROVIDER or ASCEND_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model", "")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 4000)
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", 5*time.Second)
	v.SetDefault("timeout", 300*time.Second)
	v.SetDefault("history_backend", "memory")
	v.SetDefault("history_path", "ascend-history.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("ASCEND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = providerEnvKey(cfg.Provider)
	}

	return &cfg, nil
}

// Validate fails fast on configurations that cannot produce a working
// system, before any agent is constructed.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		if c.APIKey == "" {
			return fmt.Errorf("provider %s: no API key configured (set ASCEND_API_KEY or the provider's environment variable)", c.Provider)
		}
	case ProviderMock:
		// No credential needed.
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	policy := c.RetryPolicy()
	if err := policy.Validate(); err != nil {
		return err
	}

	switch c.HistoryBackend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown history backend %q", c.HistoryBackend)
	}

	return nil
}

// RetryPolicy converts the retry settings into the executor policy.
func (c *Config) RetryPolicy() core.RetryPolicy {
	return core.RetryPolicy{
		MaxRetries: c.MaxRetries,
		RetryDelay: c.RetryDelay,
		Timeout:    c.Timeout,
	}
}

// providerEnvKey falls back to each provider's conventional credential
// variable when no explicit key is configured.
func providerEnvKey(provider string) string {
	switch provider {
	case ProviderGemini:
		return os.Getenv("GOOGLE_API_KEY")
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
