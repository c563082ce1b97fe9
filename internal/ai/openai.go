package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider implements Provider for the OpenAI Chat Completions API
// and servers that mirror it.
type OpenAIProvider struct {
	name   string
	apiKey string
	model  string
	apiURL string
	client streamClient

	// legacyMaxTokens sends max_tokens instead of max_completion_tokens.
	legacyMaxTokens bool
}

// NewOpenAI creates a provider for the OpenAI Chat Completions API.
func NewOpenAI(s Settings) *OpenAIProvider {
	apiURL := s.BaseURL
	if apiURL == "" {
		apiURL = defaultOpenAIURL
	}
	return &OpenAIProvider{
		name:   ProviderOpenAI,
		apiKey: s.APIKey,
		model:  s.Model,
		apiURL: apiURL,
		client: newStreamClient(ProviderOpenAI, s),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return p.name }

// StreamCompletion sends req as a system + user message pair with
// stream enabled.
func (p *OpenAIProvider) StreamCompletion(ctx context.Context, req PromptRequest, out io.Writer) (string, error) {
	header := http.Header{}
	if p.apiKey != "" {
		header.Set("Authorization", "Bearer "+p.apiKey)
	}

	extract := func(payload string) (string, error) {
		return extractOpenAI(p.name, payload)
	}
	return p.client.post(ctx, p.apiURL, header, p.buildRequest(req), extract, out)
}

func (p *OpenAIProvider) buildRequest(req PromptRequest) openaiRequest {
	body := openaiRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Stream: true,
	}
	if p.legacyMaxTokens {
		body.MaxTokens = defaultMaxTokens
	} else {
		body.MaxCompletionTokens = defaultMaxTokens
	}
	return body
}

// extractOpenAI returns choices[0].delta.content. A chunk without a
// choices array is malformed; an empty array or a delta without content
// (role announcement, finish_reason) yields no text.
func extractOpenAI(provider, payload string) (string, error) {
	var chunk openaiChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", malformed(err)
	}

	if chunk.Error != nil {
		msg := chunk.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", &EventError{Provider: provider, Type: chunk.Error.kind(), Message: msg}
	}
	if chunk.Choices == nil {
		return "", malformed(errors.New("chunk has no choices"))
	}

	choices := *chunk.Choices
	if len(choices) == 0 || choices[0].Delta.Content == nil {
		return "", nil
	}
	return *choices[0].Delta.Content, nil
}
