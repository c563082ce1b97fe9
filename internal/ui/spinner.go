// Package ui provides terminal output helpers: the waiting indicator and
// the sinks that streamed completion text is written to.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner wraps a terminal spinner for the waiting state.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner with the given message, drawn on stderr.
func NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = "  " + msg
	s.Color("cyan")
	return &Spinner{s: s}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop halts the spinner and clears the line. It blocks until the redraw
// goroutine has exited, so nothing is drawn after it returns.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// Success prints a green check line to w.
func Success(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

// Warn prints a yellow warning line to w.
func Warn(w io.Writer, msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(w, "! %s\n", msg)
}
