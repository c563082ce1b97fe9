package prompt

import (
	"os"
	"sort"
	"strings"
)

// projectMarkers maps file names to project types.
var projectMarkers = map[string]string{
	"go.mod":              "go",
	"package.json":        "node",
	"requirements.txt":    "python",
	"pyproject.toml":      "python",
	"Pipfile":             "python",
	"setup.py":            "python",
	"Cargo.toml":          "rust",
	"Gemfile":             "ruby",
	"build.gradle":        "gradle",
	"build.gradle.kts":    "gradle",
	"pom.xml":             "java",
	"Makefile":            "make",
	"Dockerfile":          "docker",
	"docker-compose.yml":  "docker",
	"docker-compose.yaml": "docker",
	"main.tf":             "terraform",
}

// toolTypes lose to any language type found in the same directory.
var toolTypes = map[string]bool{"make": true, "docker": true, "terraform": true}

// Project describes the directory a request is made from.
type Project struct {
	Types []string // Detected project types, languages first
	Git   bool
}

// String renders the project for the {{project}} placeholder,
// e.g. "go, docker (git)" or "unknown".
func (p Project) String() string {
	s := unknown
	if len(p.Types) > 0 {
		s = strings.Join(p.Types, ", ")
	}
	if p.Git {
		s += " (git)"
	}
	return s
}

// DetectProject inspects the top level of dir for well-known build files.
func DetectProject(dir string) Project {
	var p Project

	entries, err := os.ReadDir(dir)
	if err != nil {
		return p
	}

	seen := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" {
			p.Git = true
			continue
		}
		if t, ok := projectMarkers[name]; ok && !seen[t] {
			seen[t] = true
			p.Types = append(p.Types, t)
		}
	}

	sort.Slice(p.Types, func(i, j int) bool {
		ti, tj := p.Types[i], p.Types[j]
		if toolTypes[ti] != toolTypes[tj] {
			return !toolTypes[ti]
		}
		return ti < tj
	})
	return p
}
