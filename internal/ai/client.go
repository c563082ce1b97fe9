// Package ai streams completions from hosted and local LLM backends.
// Each backend builds its own request and decodes its own event payloads;
// the HTTP exchange and Server-Sent Events framing are shared.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds request initiation when Settings.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// defaultMaxTokens is the generation cap sent to every backend.
	defaultMaxTokens = 1024

	// maxErrorBody limits how much of a non-2xx body is kept for APIError.
	maxErrorBody = 64 << 10
)

// newHTTPClient returns a client whose timeout covers dialing, the TLS
// handshake and waiting for response headers, but not reading the body:
// a long generation must not be cut off mid-stream.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// streamClient performs the POST + event-stream exchange common to all
// providers.
type streamClient struct {
	provider        string
	httpClient      *http.Client
	maxResponseSize int
}

func newStreamClient(provider string, s Settings) streamClient {
	return streamClient{
		provider:        provider,
		httpClient:      newHTTPClient(s.Timeout),
		maxResponseSize: s.MaxResponseSize,
	}
}

// post sends payload as JSON to url with the given extra headers and
// streams the reply through extract into out.
func (c *streamClient) post(ctx context.Context, url string, header http.Header, payload any, extract Extractor, out io.Writer) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	slog.Debug("sending completion request", "provider", c.provider, "url", url, "bytes", len(body))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	slog.Debug("response headers received", "provider", c.provider, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			respBody = []byte(fmt.Sprintf("failed to read error body: %v", err))
		}
		return "", &APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return readEvents(resp.Body, extract, out, c.maxResponseSize)
}
