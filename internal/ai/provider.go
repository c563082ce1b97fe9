package ai

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// PromptRequest is the system instruction and user prompt for one call.
type PromptRequest struct {
	System string
	Prompt string
}

// Provider is the interface every text-generation backend implements.
// Each implementation owns its wire format and authentication; the
// event-stream handling is shared.
type Provider interface {
	// Name returns the canonical provider name (e.g. "anthropic").
	Name() string

	// StreamCompletion sends req and streams the reply. Every text fragment
	// is written to out as it arrives; the concatenated reply is returned
	// once the backend closes the stream. On error the partial reply is
	// discarded, although fragments already written to out stay written.
	StreamCompletion(ctx context.Context, req PromptRequest, out io.Writer) (string, error)
}

// Settings is the resolved configuration a provider is built from.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string // Full endpoint URL; empty selects the provider default.

	// Timeout bounds connecting and waiting for response headers.
	// Zero selects DefaultTimeout.
	Timeout time.Duration

	// MaxResponseSize caps the accumulated reply in bytes.
	// Zero selects DefaultMaxResponseSize.
	MaxResponseSize int
}

// SupportedProviders returns the list of all supported provider names.
func SupportedProviders() []string {
	return []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOllama}
}

// New creates the Provider registered under name.
func New(name string, s Settings) (Provider, error) {
	switch name {
	case ProviderAnthropic:
		return NewAnthropic(s), nil
	case ProviderOpenAI:
		return NewOpenAI(s), nil
	case ProviderGemini:
		return NewGemini(s), nil
	case ProviderOllama:
		return NewOllama(s), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", name, SupportedProviders())
	}
}
