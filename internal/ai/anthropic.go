package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// AnthropicProvider implements Provider for the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey string
	model  string
	apiURL string
	client streamClient
}

// NewAnthropic creates a provider for the Anthropic Messages API.
func NewAnthropic(s Settings) *AnthropicProvider {
	apiURL := s.BaseURL
	if apiURL == "" {
		apiURL = defaultAnthropicURL
	}
	return &AnthropicProvider{
		apiKey: s.APIKey,
		model:  s.Model,
		apiURL: apiURL,
		client: newStreamClient(ProviderAnthropic, s),
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

// StreamCompletion sends req to the Messages API with stream enabled.
func (p *AnthropicProvider) StreamCompletion(ctx context.Context, req PromptRequest, out io.Writer) (string, error) {
	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	return p.client.post(ctx, p.apiURL, header, p.buildRequest(req), extractAnthropic, out)
}

func (p *AnthropicProvider) buildRequest(req PromptRequest) anthropicRequest {
	return anthropicRequest{
		Model:     p.model,
		MaxTokens: defaultMaxTokens,
		System:    req.System,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		Stream:    true,
	}
}

// extractAnthropic returns the text of a content_block_delta/text_delta
// event. Lifecycle events (message_start, ping, content_block_stop, ...)
// yield no text; an error event becomes an *EventError.
func extractAnthropic(payload string) (string, error) {
	var ev anthropicEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return "", malformed(err)
	}

	switch ev.Type {
	case "":
		return "", malformed(errors.New("event has no type"))
	case "content_block_delta":
		if ev.Delta != nil && ev.Delta.Type == "text_delta" {
			return ev.Delta.Text, nil
		}
		return "", nil
	case "error":
		e := &EventError{Provider: ProviderAnthropic, Message: "unknown error"}
		if ev.Error != nil {
			e.Type = ev.Error.kind()
			if ev.Error.Message != "" {
				e.Message = ev.Error.Message
			}
		}
		return "", e
	default:
		return "", nil
	}
}
