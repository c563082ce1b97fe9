package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sink is a live output destination for streamed fragments. Finish ends
// the display session; it is safe to call more than once.
type Sink interface {
	io.Writer
	Finish()
}

// NullWriter discards everything. Used in quiet mode.
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// Finish does nothing.
func (NullWriter) Finish() {}

// StreamWriter writes fragments verbatim, dimmed, to an underlying writer.
type StreamWriter struct {
	out   io.Writer
	style *color.Color
	wrote bool
}

// NewStreamWriter creates a StreamWriter on out.
func NewStreamWriter(out io.Writer) *StreamWriter {
	return &StreamWriter{out: out, style: color.New(color.Faint)}
}

func (w *StreamWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := w.style.Fprint(w.out, string(p)); err != nil {
		return 0, err
	}
	w.wrote = true
	return len(p), nil
}

// Finish terminates the streamed text with a newline if anything was
// written.
func (w *StreamWriter) Finish() {
	if w.wrote {
		fmt.Fprintln(w.out)
		w.wrote = false
	}
}

// indicator is the waiting animation driven by SpinnerWriter.
type indicator interface {
	Start()
	Stop()
}

type sinkState int

const (
	stateWaiting sinkState = iota
	stateStreaming
	stateFinished
)

// SpinnerWriter shows an indicator until the first fragment arrives, then
// erases it and streams like StreamWriter.
type SpinnerWriter struct {
	ind    indicator
	stream *StreamWriter
	state  sinkState
}

// NewSpinnerWriter starts a spinner with msg and returns a writer that
// streams to out once text arrives.
func NewSpinnerWriter(out io.Writer, msg string) *SpinnerWriter {
	return newSpinnerWriter(out, NewSpinner(msg))
}

func newSpinnerWriter(out io.Writer, ind indicator) *SpinnerWriter {
	ind.Start()
	return &SpinnerWriter{ind: ind, stream: NewStreamWriter(out), state: stateWaiting}
}

func (w *SpinnerWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.state == stateWaiting {
		w.ind.Stop()
		w.state = stateStreaming
	}
	return w.stream.Write(p)
}

// Finish stops the indicator if nothing was streamed, or terminates the
// streamed text otherwise.
func (w *SpinnerWriter) Finish() {
	switch w.state {
	case stateWaiting:
		w.ind.Stop()
	case stateStreaming:
		w.stream.Finish()
	}
	w.state = stateFinished
}
