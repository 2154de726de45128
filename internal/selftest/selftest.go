// Package selftest validates the runtime environment before a
// generation run: Maven, API keys, project layout, history store, and
// the optional graph database.
package selftest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/joss/testsmith/internal/config"
	"github.com/joss/testsmith/internal/graph"
	"github.com/joss/testsmith/internal/store"
)

// Environment describes the runtime environment.
type Environment struct {
	HasTTY        bool
	MavenVersion  string
	HasAPIKey     bool
	Provider      string
	ProjectRoot   string
	SourceRootOK  bool
	HasPom        bool
	StoreWritable bool
	GraphUp       bool
	Warnings      []string
	Errors        []string
}

// pinger lets tests substitute the graph connection.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

var connectGraph = func() (pinger, error) { return graph.Connect() }

// Check performs a complete environment validation.
func Check() *Environment {
	env := &Environment{}
	cfg := config.Env()

	env.HasTTY = term.IsTerminal(int(os.Stdin.Fd()))
	env.Provider = cfg.Provider
	env.ProjectRoot = cfg.ProjectRoot

	env.detectMaven()
	env.checkAPIKey(cfg)
	env.checkProject(cfg)
	env.checkStore()
	env.checkGraph()

	return env
}

func (e *Environment) detectMaven() {
	path, err := exec.LookPath("mvn")
	if err != nil {
		e.Errors = append(e.Errors, "mvn not found on PATH")
		return
	}
	if out, err := exec.Command(path, "--version").Output(); err == nil {
		if line, _, found := strings.Cut(string(out), "\n"); found {
			e.MavenVersion = strings.TrimSpace(line)
		}
	}
	if e.MavenVersion == "" {
		e.MavenVersion = "mvn (version unknown)"
	}
}

func (e *Environment) checkAPIKey(cfg *config.TestsmithEnv) {
	switch cfg.Provider {
	case "openai":
		e.HasAPIKey = cfg.OpenAIKey != ""
		if !e.HasAPIKey {
			e.Errors = append(e.Errors, "OPENAI_API_KEY not set")
		}
	default:
		e.HasAPIKey = cfg.GeminiKey != ""
		if !e.HasAPIKey {
			e.Errors = append(e.Errors, "GEMINI_API_KEY not set (free key at https://aistudio.google.com)")
		}
	}
}

func (e *Environment) checkProject(cfg *config.TestsmithEnv) {
	if _, err := os.Stat(filepath.Join(cfg.ProjectRoot, "pom.xml")); err == nil {
		e.HasPom = true
	} else {
		e.Warnings = append(e.Warnings, fmt.Sprintf("no pom.xml under %s", cfg.ProjectRoot))
	}
	if info, err := os.Stat(filepath.Join(cfg.ProjectRoot, cfg.SourceRoot)); err == nil && info.IsDir() {
		e.SourceRootOK = true
	} else {
		e.Warnings = append(e.Warnings, fmt.Sprintf("source root %s not found", cfg.SourceRoot))
	}
}

func (e *Environment) checkStore() {
	s, err := store.Open(config.GetPaths().Data)
	if err != nil {
		e.Warnings = append(e.Warnings, fmt.Sprintf("history store: %v", err))
		return
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err == nil {
		e.StoreWritable = true
	} else {
		e.Warnings = append(e.Warnings, fmt.Sprintf("history store: %v", err))
	}
}

func (e *Environment) checkGraph() {
	db, err := connectGraph()
	if err != nil {
		e.Warnings = append(e.Warnings, "graph database unavailable (export disabled)")
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err == nil {
		e.GraphUp = true
	} else {
		e.Warnings = append(e.Warnings, "graph database unavailable (export disabled)")
	}
}

// IsHealthy returns true if a generation run can proceed.
func (e *Environment) IsHealthy() bool {
	return len(e.Errors) == 0
}

// Summary renders a human-readable report.
func (e *Environment) Summary() string {
	var sb strings.Builder
	sb.WriteString("TESTSMITH ENVIRONMENT CHECK\n\n")

	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}

	fmt.Fprintf(&sb, "%s maven: %s\n", mark(e.MavenVersion != ""), e.MavenVersion)
	fmt.Fprintf(&sb, "%s provider: %s (API key %s)\n", mark(e.HasAPIKey), e.Provider, presentOrMissing(e.HasAPIKey))
	fmt.Fprintf(&sb, "%s project: %s (pom.xml %s, sources %s)\n",
		mark(e.HasPom && e.SourceRootOK), e.ProjectRoot,
		presentOrMissing(e.HasPom), presentOrMissing(e.SourceRootOK))
	fmt.Fprintf(&sb, "%s history store\n", mark(e.StoreWritable))
	fmt.Fprintf(&sb, "%s graph database\n", mark(e.GraphUp))

	if !e.HasTTY {
		sb.WriteString("\nno TTY detected, progress spinner disabled\n")
	}
	if len(e.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range e.Warnings {
			fmt.Fprintf(&sb, "  ! %s\n", w)
		}
	}
	if len(e.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, err := range e.Errors {
			fmt.Fprintf(&sb, "  ✗ %s\n", err)
		}
	}
	return sb.String()
}

func presentOrMissing(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
