package ai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// capturedRequest is what the fake backend saw.
type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

// sseServer starts a fake backend that records the request and replies
// with status and the given raw event stream. The returned func reports
// the last request seen.
func sseServer(t *testing.T, status int, events string) (*httptest.Server, func() capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	captured := capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.header = r.Header.Clone()
		_ = json.Unmarshal(raw, &captured.body)
		mu.Unlock()

		if status == http.StatusOK {
			w.Header().Set("Content-Type", "text/event-stream")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, events)
	}))
	t.Cleanup(srv.Close)
	return srv, func() capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return captured
	}
}

// sseEvents joins payloads into a "data: " event stream.
func sseEvents(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		b.WriteString("data: ")
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	return b.String()
}

// newChunkedServer starts a fake backend that writes each part separately
// and flushes after each one.
func newChunkedServer(t *testing.T, parts ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, part := range parts {
			_, _ = io.WriteString(w, part)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newSlowServer sends headers at once, then writes each part after delay.
func newSlowServer(t *testing.T, delay time.Duration, parts ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		if flusher != nil {
			flusher.Flush()
		}
		for _, part := range parts {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
			_, _ = io.WriteString(w, part)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
