package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig is the on-disk layout of config.toml.
type FileConfig struct {
	Provider        string  `toml:"provider,omitempty"`
	Model           string  `toml:"model,omitempty"`
	APIKey          string  `toml:"api_key,omitempty"`
	APIBaseURL      string  `toml:"api_base_url,omitempty"`
	SystemPrompt    string  `toml:"system_prompt,omitempty"`
	Timeout         Timeout `toml:"timeout,omitempty"`
	MaxResponseSize int     `toml:"max_response_size,omitempty"`
}

// Timeout is a timeout as written in config.toml: a duration string or
// an integer number of seconds.
type Timeout string

// UnmarshalTOML accepts both TOML strings and integers.
func (t *Timeout) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		*t = Timeout(x)
	case int64:
		*t = Timeout(strconv.FormatInt(x, 10))
	default:
		return fmt.Errorf("invalid timeout %v: want a duration string or seconds", v)
	}
	return nil
}

// configKeys maps each settable key to its field accessor and validator.
var configKeys = map[string]struct {
	set func(fc *FileConfig, value string) error
	get func(fc *FileConfig) string
}{
	KeyProvider: {
		set: func(fc *FileConfig, value string) error {
			p, err := NormalizeProvider(value)
			if err != nil {
				return err
			}
			fc.Provider = p
			return nil
		},
		get: func(fc *FileConfig) string { return fc.Provider },
	},
	KeyModel: {
		set: func(fc *FileConfig, value string) error {
			fc.Model = strings.TrimSpace(value)
			return nil
		},
		get: func(fc *FileConfig) string { return fc.Model },
	},
	KeyAPIKey: {
		set: func(fc *FileConfig, value string) error {
			fc.APIKey = strings.TrimSpace(value)
			return nil
		},
		get: func(fc *FileConfig) string { return fc.APIKey },
	},
	KeyAPIBaseURL: {
		set: func(fc *FileConfig, value string) error {
			fc.APIBaseURL = strings.TrimSpace(value)
			return nil
		},
		get: func(fc *FileConfig) string { return fc.APIBaseURL },
	},
	KeySystemPrompt: {
		set: func(fc *FileConfig, value string) error {
			fc.SystemPrompt = value
			return nil
		},
		get: func(fc *FileConfig) string { return fc.SystemPrompt },
	},
	KeyTimeout: {
		set: func(fc *FileConfig, value string) error {
			if value != "" {
				if _, err := ParseTimeout(value); err != nil {
					return err
				}
			}
			fc.Timeout = Timeout(strings.TrimSpace(value))
			return nil
		},
		get: func(fc *FileConfig) string { return string(fc.Timeout) },
	},
	KeyMaxResponseSize: {
		set: func(fc *FileConfig, value string) error {
			if value == "" {
				fc.MaxResponseSize = 0
				return nil
			}
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid max_response_size %q: must be a positive number of bytes", value)
			}
			fc.MaxResponseSize = n
			return nil
		},
		get: func(fc *FileConfig) string {
			if fc.MaxResponseSize == 0 {
				return ""
			}
			return strconv.Itoa(fc.MaxResponseSize)
		},
	},
}

// ValidKeys returns the settable keys in file order.
func ValidKeys() []string {
	return []string{
		KeyProvider,
		KeyModel,
		KeyAPIKey,
		KeyAPIBaseURL,
		KeySystemPrompt,
		KeyTimeout,
		KeyMaxResponseSize,
	}
}

// IsValidKey returns true if key is a supported configuration key.
func IsValidKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// LoadFile reads config.toml without applying environment overrides or
// defaults. A missing file yields an empty FileConfig.
func LoadFile() (*FileConfig, error) {
	fc := &FileConfig{}
	data, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if _, err := toml.Decode(string(data), fc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return fc, nil
}

// SaveFile writes fc to config.toml, creating the directory if needed.
func SaveFile(fc *FileConfig) error {
	if fc == nil {
		return errors.New("cannot save nil config")
	}
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(Path()), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SetValue validates value for key and persists it to config.toml.
// An empty value clears the key.
func SetValue(key, value string) error {
	entry, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}

	fc, err := LoadFile()
	if err != nil {
		return err
	}
	if err := entry.set(fc, value); err != nil {
		return err
	}
	return SaveFile(fc)
}

// GetValue returns the value stored in config.toml for key.
func GetValue(key string) (string, error) {
	entry, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	fc, err := LoadFile()
	if err != nil {
		return "", err
	}
	return entry.get(fc), nil
}
