package ai

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// DefaultMaxResponseSize caps the accumulated response at 1 MiB.
	DefaultMaxResponseSize = 1 << 20

	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

var frameDelimiter = []byte("\n\n")

// Extractor decodes a single "data: " payload into a text fragment.
// An empty fragment means the event carries no text (ping, metadata,
// stop events). A non-nil error aborts the stream.
type Extractor func(payload string) (string, error)

// EventBuffer splits a Server-Sent Events byte stream into frames and
// accumulates the text fragments extracted from them.
//
// Bytes are kept raw until a complete frame is found, then decoded
// lossily: invalid UTF-8 becomes U+FFFD instead of failing the call.
// Because "\n\n" never occurs inside a multi-byte sequence, decoding per
// frame gives the same result however the transport chunks the stream.
type EventBuffer struct {
	raw      []byte
	response strings.Builder
	maxSize  int
}

// NewEventBuffer creates a buffer that rejects responses larger than
// maxSize bytes. A non-positive maxSize selects DefaultMaxResponseSize.
func NewEventBuffer(maxSize int) *EventBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxResponseSize
	}
	return &EventBuffer{maxSize: maxSize}
}

// Push appends a transport chunk to the pending bytes.
func (b *EventBuffer) Push(chunk []byte) {
	b.raw = append(b.raw, chunk...)
}

// Drain processes every complete frame currently buffered. For each
// "data: " line (except the [DONE] sentinel) it calls extract, appends the
// fragment to the response and passes it to emit. emit may be nil.
//
// A fragment that pushes the response past the size cap is not emitted;
// Drain returns an error wrapping ErrResponseTooLarge instead. Extractor
// errors are returned as-is. After a successful Drain no complete frame
// is left in the buffer.
func (b *EventBuffer) Drain(extract Extractor, emit func(string)) error {
	for {
		end := bytes.Index(b.raw, frameDelimiter)
		if end < 0 {
			return nil
		}

		frame := strings.ToValidUTF8(string(b.raw[:end]), "\uFFFD")
		b.raw = b.raw[end+len(frameDelimiter):]

		for _, line := range strings.Split(frame, "\n") {
			line = strings.TrimSuffix(line, "\r")

			data, ok := strings.CutPrefix(line, dataPrefix)
			if !ok || data == doneSentinel {
				continue
			}

			text, err := extract(data)
			if err != nil {
				return err
			}
			if text == "" {
				continue
			}

			b.response.WriteString(text)
			if b.response.Len() > b.maxSize {
				return fmt.Errorf("%w (>%d bytes)", ErrResponseTooLarge, b.maxSize)
			}

			if emit != nil {
				emit(text)
			}
		}
	}
}

// Pending reports how many undelimited bytes are waiting for more input.
func (b *EventBuffer) Pending() int {
	return len(b.raw)
}

// Finalize returns the accumulated response. Any undelimited tail is
// discarded: well-behaved servers terminate every event with a blank line.
func (b *EventBuffer) Finalize() string {
	b.raw = nil
	return b.response.String()
}
