package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434/v1/chat/completions"

// OllamaProvider implements Provider for a local Ollama server through its
// OpenAI-compatible endpoint.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllama creates a provider that talks to a local Ollama instance.
// No API key is required.
func NewOllama(s Settings) *OllamaProvider {
	if s.BaseURL == "" {
		s.BaseURL = defaultOllamaURL
	}
	p := NewOpenAI(s)
	p.name = ProviderOllama
	p.client.provider = ProviderOllama
	p.legacyMaxTokens = true
	return &OllamaProvider{OpenAIProvider: p}
}

// StreamCompletion streams from Ollama, adding setup hints to the two
// failures new users hit most: the server not running and the model not
// being pulled.
func (o *OllamaProvider) StreamCompletion(ctx context.Context, req PromptRequest, out io.Writer) (string, error) {
	text, err := o.OpenAIProvider.StreamCompletion(ctx, req, out)
	if err == nil {
		return text, nil
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, ErrTransport) && ctx.Err() == nil:
		return "", fmt.Errorf("%w (is Ollama running at %s? start it with: ollama serve)", err, o.apiURL)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound && strings.Contains(apiErr.Body, "not found"):
		return "", fmt.Errorf("%w (run: ollama pull %s)", err, o.model)
	}
	return "", err
}
