package ai

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// readChunkSize is the size of each body read.
const readChunkSize = 32 << 10

// flusher is implemented by sinks that buffer output.
type flusher interface {
	Flush() error
}

// writeFragment forwards a fragment to the live sink. Sink failures never
// abort the stream; the returned response is what matters.
func writeFragment(w io.Writer, text string) {
	if w == nil {
		return
	}
	_, _ = io.WriteString(w, text)
	if f, ok := w.(flusher); ok {
		_ = f.Flush()
	}
}

// readEvents reads r until EOF, framing the bytes as Server-Sent Events
// and forwarding every extracted fragment to out. It returns the
// concatenated fragments.
func readEvents(r io.Reader, extract Extractor, out io.Writer, maxSize int) (string, error) {
	buf := NewEventBuffer(maxSize)
	chunk := make([]byte, readChunkSize)
	fragments := 0

	emit := func(text string) {
		fragments++
		writeFragment(out, text)
	}

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Push(chunk[:n])
			if derr := buf.Drain(extract, emit); derr != nil {
				return "", derr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStream, err)
		}
	}

	if pending := buf.Pending(); pending > 0 {
		slog.Debug("discarding unterminated event", "bytes", pending)
	}
	response := buf.Finalize()
	slog.Debug("stream complete", "fragments", fragments, "bytes", len(response))
	return response, nil
}
