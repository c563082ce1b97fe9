// Package history records the commands halp has generated.
// History is stored as a JSON file in the config directory. It is a log
// for the user and is never consulted to answer a query.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arin/halp/internal/config"
)

const (
	fileName   = "history.json"
	maxEntries = 500
)

// fileMu guards concurrent access to the history file.
var fileMu sync.Mutex

// Entry represents a single generated command.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Query       string    `json:"query"`
	Command     string    `json:"command"`
	Explanation string    `json:"explanation,omitempty"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
}

// Path returns the history file location.
func Path() string {
	return filepath.Join(config.Dir(), fileName)
}

// Save appends a new entry to the history file, stamping it with the
// current time.
func Save(entry Entry) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	entry.Timestamp = time.Now()

	entries, err := loadAll()
	if err != nil {
		slog.Warn("discarding unreadable history", "path", Path(), "error", err)
		entries = nil
	}
	entries = append(entries, entry)

	// Trim to max entries, keeping the most recent.
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	return write(entries)
}

// Load returns the most recent limit entries, oldest first.
// A non-positive limit returns everything.
func Load(limit int) ([]Entry, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	entries, err := loadAll()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}

// Clear removes the history file.
func Clear() error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if err := os.Remove(Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func write(entries []Entry) error {
	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	return os.WriteFile(Path(), data, 0o600)
}

func loadAll() ([]Entry, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}

	return entries, nil
}
