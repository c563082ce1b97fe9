package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/arin/halp/internal/ai"
	"github.com/arin/halp/internal/history"
	"github.com/arin/halp/internal/stats"
	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// executeCommand runs the root command with args and fresh flag state.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	quiet, explainOnly, copyResult, debug = false, false, false, false
	historyLimit, historyClear = 20, false
	if args == nil {
		args = []string{}
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// setupBackend points halp at a fake OpenAI-compatible server that
// streams the given content fragments.
func setupBackend(t *testing.T, fragments ...string) {
	t.Helper()

	var body strings.Builder
	for _, f := range fragments {
		body.WriteString(`data: {"choices":[{"index":0,"delta":{"content":` + quoteJSON(f) + `}}]}` + "\n\n")
	}
	body.WriteString("data: [DONE]\n\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, body.String())
	}))
	t.Cleanup(srv.Close)

	setupConfigDir(t)
	t.Setenv("HALP_PROVIDER", "openai")
	t.Setenv("HALP_API_KEY", "sk-test")
	t.Setenv("HALP_API_BASE_URL", srv.URL)

	orig := stderrIsTerminal
	stderrIsTerminal = func() bool { return false }
	t.Cleanup(func() { stderrIsTerminal = orig })
}

func setupConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"HALP_PROVIDER", "HALP_MODEL", "HALP_API_KEY", "HALP_API_BASE_URL",
		"HALP_SYSTEM_PROMPT", "HALP_TIMEOUT", "HALP_MAX_RESPONSE_SIZE", "HALP_DEBUG",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func quoteJSON(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func TestRun_PrintsCommand(t *testing.T) {
	setupBackend(t, "COMMAND: ls", " -la\nEXPLANATION: Lists all files")

	stdout, stderr, err := executeCommand(t, "list", "all", "files")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "ls -la\n" {
		t.Errorf("expected command on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "COMMAND: ls -la") {
		t.Errorf("expected streamed reply on stderr, got %q", stderr)
	}
}

func TestRun_Quiet(t *testing.T) {
	setupBackend(t, "COMMAND: pwd\nEXPLANATION: Prints the working directory")

	stdout, stderr, err := executeCommand(t, "-q", "where", "am", "i")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "pwd\n" {
		t.Errorf("unexpected stdout: %q", stdout)
	}
	if strings.Contains(stderr, "COMMAND:") {
		t.Errorf("quiet mode should not stream, got %q", stderr)
	}
}

func TestRun_ExplainOnly(t *testing.T) {
	setupBackend(t, "COMMAND: df -h\nEXPLANATION: Shows free disk space")

	stdout, _, err := executeCommand(t, "-e", "disk", "space")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "Shows free disk space\n" {
		t.Errorf("unexpected stdout: %q", stdout)
	}
}

func TestRun_NoCommand(t *testing.T) {
	setupBackend(t)

	_, _, err := executeCommand(t, "-q", "nothing")
	if !errors.Is(err, errNoCommand) {
		t.Fatalf("expected errNoCommand, got %v", err)
	}
}

func TestRun_MissingAPIKey(t *testing.T) {
	setupConfigDir(t)
	t.Setenv("HALP_PROVIDER", "gemini")

	_, _, err := executeCommand(t, "list", "files")
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("error should name the provider key variable: %v", err)
	}
}

func TestRun_RequiresQuery(t *testing.T) {
	setupConfigDir(t)
	if _, _, err := executeCommand(t); err == nil {
		t.Fatal("expected an error without a query")
	}
}

func TestRun_SavesHistory(t *testing.T) {
	setupBackend(t, "COMMAND: uptime\nEXPLANATION: Shows load")

	if _, _, err := executeCommand(t, "-q", "how", "busy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := history.Load(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Query != "how busy" || e.Command != "uptime" || e.Provider != "openai" || e.Model != "gpt-5-nano" {
		t.Errorf("unexpected history entry: %+v", e)
	}
}

func TestRun_CopyFailureIsWarning(t *testing.T) {
	setupBackend(t, "COMMAND: whoami")
	orig := copyToClipboard
	copyToClipboard = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { copyToClipboard = orig })

	stdout, stderr, err := executeCommand(t, "-c", "who", "am", "i")
	if err != nil {
		t.Fatalf("clipboard failure should not fail the run: %v", err)
	}
	if stdout != "whoami\n" {
		t.Errorf("unexpected stdout: %q", stdout)
	}
	if !strings.Contains(stderr, "no clipboard") {
		t.Errorf("expected a warning, got %q", stderr)
	}
}

func TestRun_Copy(t *testing.T) {
	setupBackend(t, "COMMAND: date")
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	if _, _, err := executeCommand(t, "-c", "the", "date"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if copied != "date" {
		t.Errorf("expected command copied, got %q", copied)
	}
}

func TestConfig_SetShowPath(t *testing.T) {
	setupConfigDir(t)

	if _, _, err := executeCommand(t, "config", "set", "provider", "google"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stdout, _, err := executeCommand(t, "config", "set", "api_key", "AIzaSyVerySecretKey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stdout, "VerySecret") {
		t.Errorf("api key should be masked: %q", stdout)
	}

	stdout, _, err = executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"gemini", "gemini-2.5-flash", "AIza...tKey", "30s"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(stdout), "halp/config.toml") {
		t.Errorf("unexpected path: %q", stdout)
	}
}

func TestConfig_SetRejectsUnknownKey(t *testing.T) {
	setupConfigDir(t)
	if _, _, err := executeCommand(t, "config", "set", "colour", "blue"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestHistoryCommand(t *testing.T) {
	setupConfigDir(t)

	stdout, _, err := executeCommand(t, "history")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No history yet.") {
		t.Errorf("unexpected output: %q", stdout)
	}

	if err := history.Save(history.Entry{Query: "list files", Command: "ls -la"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stdout, _, err = executeCommand(t, "history", "-n", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "list files") || !strings.Contains(stdout, "ls -la") {
		t.Errorf("unexpected output: %q", stdout)
	}

	if _, _, err := executeCommand(t, "history", "--clear"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ := history.Load(0)
	if len(entries) != 0 {
		t.Errorf("expected history cleared, got %d entries", len(entries))
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "(not set)"},
		{"short", "*****"},
		{"sk-ant-1234567890", "sk-a...7890"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.in); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRun_BackendErrorRecordedInStats(t *testing.T) {
	setupConfigDir(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("HALP_PROVIDER", "openai")
	t.Setenv("HALP_API_KEY", "sk-test")
	t.Setenv("HALP_API_BASE_URL", srv.URL)

	_, _, err := executeCommand(t, "-q", "anything")
	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *ai.APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected status: %d", apiErr.StatusCode)
	}

	records, err := stats.LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Success || records[0].ErrorKind != "api" {
		t.Errorf("unexpected stats: %+v", records)
	}
}

func TestStatsCommand(t *testing.T) {
	setupBackend(t, "COMMAND: ls")

	stdout, _, err := executeCommand(t, "stats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No data yet.") {
		t.Errorf("unexpected output: %q", stdout)
	}

	if _, _, err := executeCommand(t, "-q", "list"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stdout, _, err = executeCommand(t, "stats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"1 total", "100%", "openai", "gpt-5-nano"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stats output missing %q:\n%s", want, stdout)
		}
	}
}
