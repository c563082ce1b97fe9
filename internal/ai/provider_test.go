package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	for _, name := range SupportedProviders() {
		t.Run(name, func(t *testing.T) {
			p, err := New(name, Settings{Model: "m"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name() != name {
				t.Errorf("expected name %q, got %q", name, p.Name())
			}
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("mistral", Settings{})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "mistral") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestNewHTTPClient_NoOverallTimeout(t *testing.T) {
	c := newHTTPClient(5 * time.Second)
	if c.Timeout != 0 {
		t.Errorf("client timeout would cut off the body read: %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("unexpected transport type %T", c.Transport)
	}
	if tr.ResponseHeaderTimeout != 5*time.Second || tr.TLSHandshakeTimeout != 5*time.Second {
		t.Errorf("unexpected transport timeouts: header=%v tls=%v", tr.ResponseHeaderTimeout, tr.TLSHandshakeTimeout)
	}
}

func TestNewHTTPClient_DefaultTimeout(t *testing.T) {
	tr := newHTTPClient(0).Transport.(*http.Transport)
	if tr.ResponseHeaderTimeout != DefaultTimeout {
		t.Errorf("expected %v, got %v", DefaultTimeout, tr.ResponseHeaderTimeout)
	}
}

func TestStreamCompletion_SlowBodyNotCutOff(t *testing.T) {
	// Headers arrive immediately; the body trickles in past the timeout.
	srv := newSlowServer(t, 150*time.Millisecond,
		`data: {"choices":[{"delta":{"content":"a"}}]}`+"\n\n",
		`data: {"choices":[{"delta":{"content":"b"}}]}`+"\n\n",
	)

	p := NewOpenAI(Settings{Model: "m", BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
	got, err := p.StreamCompletion(context.Background(), PromptRequest{Prompt: "x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ab" {
		t.Errorf("expected %q, got %q", "ab", got)
	}
}

func TestOllama_Defaults(t *testing.T) {
	p := NewOllama(Settings{Model: "llama3.2:latest"})
	if p.Name() != "ollama" {
		t.Errorf("unexpected name: %s", p.Name())
	}
	if p.apiURL != "http://localhost:11434/v1/chat/completions" {
		t.Errorf("unexpected default URL: %s", p.apiURL)
	}
}

func TestOllama_StreamCompletion(t *testing.T) {
	srv, seen := sseServer(t, http.StatusOK, sseEvents(`{"choices":[{"delta":{"content":"uptime"}}]}`, `[DONE]`))

	p := NewOllama(Settings{Model: "llama3.2:latest", BaseURL: srv.URL})
	got, err := p.StreamCompletion(context.Background(), PromptRequest{Prompt: "x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "uptime" {
		t.Errorf("expected %q, got %q", "uptime", got)
	}

	captured := seen()
	if captured.body["max_tokens"] != float64(1024) {
		t.Errorf("Ollama should receive max_tokens, got %v", captured.body)
	}
	if captured.header.Get("Authorization") != "" {
		t.Errorf("no key should mean no Authorization header")
	}
}

func TestOllama_ModelNotFoundHint(t *testing.T) {
	srv, _ := sseServer(t, http.StatusNotFound, `{"error":{"message":"model \"llama9\" not found, try pulling it first"}}`)

	p := NewOllama(Settings{Model: "llama9", BaseURL: srv.URL})
	_, err := p.StreamCompletion(context.Background(), PromptRequest{Prompt: "x"}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("hint should keep the APIError in the chain, got %v", err)
	}
	if apiErr.Provider != "ollama" {
		t.Errorf("unexpected provider: %s", apiErr.Provider)
	}
	if !strings.Contains(err.Error(), "ollama pull llama9") {
		t.Errorf("expected pull hint, got %v", err)
	}
}

func TestOllama_UnreachableHint(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	p := NewOllama(Settings{Model: "m", BaseURL: url})
	_, err := p.StreamCompletion(context.Background(), PromptRequest{Prompt: "x"}, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if !strings.Contains(err.Error(), "ollama serve") {
		t.Errorf("expected serve hint, got %v", err)
	}
}
