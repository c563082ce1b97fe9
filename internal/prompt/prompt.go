// Package prompt builds the system instruction sent to the model and
// splits the model's reply into a command and an explanation.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const unknown = "unknown"

const defaultTemplate = `You are a command-line assistant. Generate a shell command for the user's request.

Format your response EXACTLY as:
COMMAND: <the exact command to run>
EXPLANATION: <brief one-line explanation>

Context:
- OS: %s
- Shell: %s
- Working directory: %s

Rules:
- Output exactly one command (use && or ; for multi-step operations)
- The command must be valid for the specified OS and shell
- Prefer common, portable commands when possible
- Keep explanation to one concise line
- Never include dangerous commands (rm -rf /, etc) without explicit confirmation flags
- If the request is ambiguous, make a reasonable assumption and note it in the explanation`

// Environment is the host context substituted into the prompt.
type Environment struct {
	OS      string // "<goos> (<goarch>)"
	Shell   string // Base name of $SHELL
	Cwd     string
	Project Project // Only rendered by custom templates via {{project}}
}

// DetectEnvironment inspects the running process.
func DetectEnvironment() Environment {
	cwd := detectCwd()
	env := Environment{
		OS:    fmt.Sprintf("%s (%s)", runtime.GOOS, runtime.GOARCH),
		Shell: detectShell(),
		Cwd:   cwd,
	}
	if cwd != unknown {
		env.Project = DetectProject(cwd)
	}
	return env
}

func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return unknown
	}
	return filepath.Base(shell)
}

func detectCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return unknown
	}
	return cwd
}

// BuildSystemPrompt returns the built-in instruction for the current
// environment, or template with {{os}}, {{shell}}, {{cwd}} and
// {{project}} substituted when template is non-empty.
func BuildSystemPrompt(template string) string {
	return DetectEnvironment().SystemPrompt(template)
}

// SystemPrompt renders the instruction for env.
func (env Environment) SystemPrompt(template string) string {
	if template == "" {
		return fmt.Sprintf(defaultTemplate, env.OS, env.Shell, env.Cwd)
	}
	r := strings.NewReplacer(
		"{{os}}", env.OS,
		"{{shell}}", env.Shell,
		"{{cwd}}", env.Cwd,
		"{{project}}", env.Project.String(),
	)
	return r.Replace(template)
}
