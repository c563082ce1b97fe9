package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/"

// GeminiProvider implements Provider for the Gemini streamGenerateContent
// endpoint in SSE mode.
type GeminiProvider struct {
	apiKey string
	model  string
	apiURL string
	client streamClient
}

// NewGemini creates a provider for the Gemini API. The model name is part
// of the default endpoint URL; a configured BaseURL is used verbatim.
func NewGemini(s Settings) *GeminiProvider {
	apiURL := s.BaseURL
	if apiURL == "" {
		apiURL = defaultGeminiBaseURL + url.PathEscape(s.Model) + ":streamGenerateContent?alt=sse"
	}
	return &GeminiProvider{
		apiKey: s.APIKey,
		model:  s.Model,
		apiURL: apiURL,
		client: newStreamClient(ProviderGemini, s),
	}
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return ProviderGemini }

// StreamCompletion sends req with the system prompt as system_instruction.
func (p *GeminiProvider) StreamCompletion(ctx context.Context, req PromptRequest, out io.Writer) (string, error) {
	header := http.Header{}
	header.Set("x-goog-api-key", p.apiKey)

	return p.client.post(ctx, p.apiURL, header, p.buildRequest(req), extractGemini, out)
}

func (p *GeminiProvider) buildRequest(req PromptRequest) geminiRequest {
	return geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: req.System}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
	}
}

// extractGemini returns candidates[0].content.parts[0].text. Chunks
// without candidates (usage metadata, safety blocks) yield no text.
func extractGemini(payload string) (string, error) {
	var chunk geminiChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", malformed(err)
	}

	if chunk.Error != nil {
		msg := chunk.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", &EventError{Provider: ProviderGemini, Type: chunk.Error.kind(), Message: msg}
	}

	if len(chunk.Candidates) == 0 {
		return "", nil
	}
	content := chunk.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", nil
	}
	return content.Parts[0].Text, nil
}
