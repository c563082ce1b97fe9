package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/arin/halp/internal/ai"
	"github.com/arin/halp/internal/config"
	"github.com/arin/halp/internal/history"
	"github.com/arin/halp/internal/prompt"
	"github.com/arin/halp/internal/stats"
	"github.com/arin/halp/internal/ui"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoCommand is returned when the reply contains nothing usable.
var errNoCommand = errors.New("could not extract command from response")

// stderrIsTerminal decides between the spinner and plain streaming.
var stderrIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	provider, err := ai.New(cfg.Provider, ai.Settings{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		BaseURL:         cfg.APIBaseURL,
		Timeout:         cfg.Timeout,
		MaxResponseSize: cfg.MaxResponseSize,
	})
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	req := ai.PromptRequest{
		System: prompt.BuildSystemPrompt(cfg.SystemPrompt),
		Prompt: query,
	}

	slog.Debug("resolved configuration",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"base_url", cfg.APIBaseURL,
		"timeout", cfg.Timeout,
		"max_response_size", cfg.MaxResponseSize,
	)

	sink := newSink(cmd.ErrOrStderr())
	start := time.Now()
	response, err := provider.StreamCompletion(cmd.Context(), req, sink)
	sink.Finish()
	recordStats(cfg, time.Since(start), len(response), err)
	if err != nil {
		return err
	}

	parsed := prompt.ParseResponse(response)
	out := cmd.OutOrStdout()

	if explainOnly {
		if parsed.Explanation != "" {
			fmt.Fprintln(out, parsed.Explanation)
		}
	} else {
		if parsed.Command == "" {
			return errNoCommand
		}
		fmt.Fprintln(out, parsed.Command)
	}

	if copyResult && parsed.Command != "" {
		copyCommand(cmd.ErrOrStderr(), parsed.Command)
	}

	if parsed.Command != "" {
		err := history.Save(history.Entry{
			Query:       query,
			Command:     parsed.Command,
			Explanation: parsed.Explanation,
			Provider:    cfg.Provider,
			Model:       cfg.Model,
		})
		if err != nil {
			slog.Warn("failed to save history", "error", err)
		}
	}

	return nil
}

func recordStats(cfg *config.Config, latency time.Duration, size int, err error) {
	serr := stats.Save(stats.Record{
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		LatencyMs:     latency.Milliseconds(),
		ResponseBytes: size,
		Success:       err == nil,
		ErrorKind:     ai.ErrorKind(err),
	})
	if serr != nil {
		slog.Warn("failed to save stats", "error", serr)
	}
}

// newSink picks the live output for the reply: nothing in quiet mode, a
// spinner then dim text on a terminal, dim text otherwise.
func newSink(stderr io.Writer) ui.Sink {
	switch {
	case quiet:
		return ui.NullWriter{}
	case stderrIsTerminal():
		return ui.NewSpinnerWriter(stderr, "Thinking...")
	default:
		return ui.NewStreamWriter(stderr)
	}
}

func copyCommand(stderr io.Writer, command string) {
	if err := copyToClipboard(command); err != nil {
		ui.Warn(stderr, fmt.Sprintf("could not copy to clipboard: %v", err))
		return
	}
	if !quiet {
		ui.Success(stderr, "Copied to clipboard")
	}
}
