// Package config resolves halp's settings from the environment and
// $XDG_CONFIG_HOME/halp/config.toml.
//
// Precedence (highest to lowest):
//  1. HALP_* environment variables
//  2. config.toml values
//  3. Provider-specific fallbacks (ANTHROPIC_API_KEY, ...) and defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName    = "halp"
	configName = "config"
	configType = "toml"
	envPrefix  = "HALP"

	// DefaultProvider is used when no provider is configured.
	DefaultProvider = "anthropic"

	// DefaultTimeout bounds request initiation.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseSize caps a reply at 1 MiB.
	DefaultMaxResponseSize = 1 << 20
)

// Config keys, shared by the TOML file and viper.
const (
	KeyProvider        = "provider"
	KeyModel           = "model"
	KeyAPIKey          = "api_key"
	KeyAPIBaseURL      = "api_base_url"
	KeySystemPrompt    = "system_prompt"
	KeyTimeout         = "timeout"
	KeyMaxResponseSize = "max_response_size"
)

// Provider names after alias resolution.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

var providerAliases = map[string]string{
	"anthropic": ProviderAnthropic,
	"claude":    ProviderAnthropic,
	"openai":    ProviderOpenAI,
	"gpt":       ProviderOpenAI,
	"gemini":    ProviderGemini,
	"google":    ProviderGemini,
	"ollama":    ProviderOllama,
}

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-haiku-4-5",
	ProviderOpenAI:    "gpt-5-nano",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOllama:    "llama3.2:latest",
}

var providerKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// ErrNoAPIKey is returned by RequireAPIKey when no credential was found.
var ErrNoAPIKey = errors.New("no API key found")

// Config holds the resolved configuration.
type Config struct {
	Provider        string
	Model           string
	APIKey          string
	APIBaseURL      string // Empty selects the provider's default endpoint.
	SystemPrompt    string // Empty selects the built-in prompt.
	Timeout         time.Duration
	MaxResponseSize int
}

// Dir returns the configuration directory: $XDG_CONFIG_HOME/halp, or
// ~/.config/halp when XDG_CONFIG_HOME is unset.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), configName+"."+configType)
}

// Load reads the config file and environment and resolves every setting.
// A missing file is fine; an unreadable or invalid one is an error.
// A missing API key is not checked here, see RequireAPIKey.
func Load() (*Config, error) {
	v, err := initViper(Dir())
	if err != nil {
		return nil, err
	}
	return resolve(v)
}

// initViper creates a viper instance over the config file in dir with
// HALP_ environment overrides.
func initViper(dir string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return v, nil
}

func resolve(v *viper.Viper) (*Config, error) {
	provider, err := NormalizeProvider(v.GetString(KeyProvider))
	if err != nil {
		return nil, err
	}

	timeout, err := ParseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider:        provider,
		Model:           strings.TrimSpace(v.GetString(KeyModel)),
		APIKey:          v.GetString(KeyAPIKey),
		APIBaseURL:      strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
		SystemPrompt:    v.GetString(KeySystemPrompt),
		Timeout:         timeout,
		MaxResponseSize: v.GetInt(KeyMaxResponseSize),
	}

	if cfg.Model == "" {
		cfg.Model = defaultModels[provider]
	}
	if cfg.APIKey == "" {
		if env, ok := providerKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = DefaultMaxResponseSize
	}

	return cfg, nil
}

// RequireAPIKey returns an error naming every place a key can come from
// when the provider needs one and none was found.
func (c *Config) RequireAPIKey() error {
	if c.APIKey != "" || c.Provider == ProviderOllama {
		return nil
	}
	return fmt.Errorf("%w. Set HALP_API_KEY, add api_key to %s, or set %s",
		ErrNoAPIKey, Path(), providerKeyEnv[c.Provider])
}

// NormalizeProvider maps a provider name or alias to its canonical name.
// The empty string selects DefaultProvider.
func NormalizeProvider(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultProvider, nil
	}
	if p, ok := providerAliases[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown provider '%s'. Use 'anthropic', 'openai', 'gemini', or 'ollama'", name)
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// ParseTimeout accepts a duration string ("45s", "1m") or a bare integer
// number of seconds. The empty string selects DefaultTimeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeout, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid timeout %q: must be positive", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", s)
	}
	return d, nil
}

// DebugFromEnv reports whether HALP_DEBUG is set to a true value.
func DebugFromEnv() bool {
	on, _ := strconv.ParseBool(os.Getenv(envPrefix + "_DEBUG"))
	return on
}
