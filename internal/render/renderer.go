package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/joss/testsmith/internal/domain"
)

// Renderer formats analysis and generation results for the terminal.
// It builds on Writer for line formatting and returns strings so
// commands can route output wherever they need.
type Renderer struct {
	pretty bool
}

// New creates a renderer. Pretty mode adds color and rules.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

func (r *Renderer) rule(w *Writer) {
	if r.pretty {
		w.Println("%s", strings.Repeat("─", 60))
	}
}

func (r *Renderer) title(w *Writer, text string) {
	if r.pretty {
		w.Println("%s", color.CyanString(text))
		r.rule(w)
	} else {
		w.Println("%s", text)
	}
}

// Unit formats the structural facts extracted from one source file.
func (r *Renderer) Unit(u *domain.SourceUnit) string {
	var sb strings.Builder
	w := NewWriter(&sb)
	r.title(w, fmt.Sprintf("%s (%s)", u.Name, u.Kind))

	w.Println("package: %s", u.Package)
	if u.Extends != "" {
		w.Println("extends: %s", u.Extends)
	}
	if len(u.Implements) > 0 {
		w.Println("implements: %s", strings.Join(u.Implements, ", "))
	}

	if len(u.Fields) > 0 {
		w.Section("fields")
		for _, f := range u.Fields {
			w.Item("%s", f.String())
		}
	}
	if len(u.Methods) > 0 {
		w.Section("methods")
		for _, m := range u.Methods {
			visibility := "private"
			if m.Public {
				visibility = "public"
			}
			w.Item("%s %s", visibility, m.Signature())
		}
	}
	return sb.String()
}

// Graph formats a dependency graph as an indented tree.
func (r *Renderer) Graph(g domain.DependencyGraph, root string) string {
	if len(g) == 0 {
		return "No dependencies resolved\n"
	}

	var sb strings.Builder
	w := NewWriter(&sb)
	r.title(w, fmt.Sprintf("Dependency graph for %s (%d classes)", root, len(g)))

	for _, name := range g.Names() {
		deps := g[name]
		marker := ""
		switch {
		case deps.IsInterface:
			marker = " [interface]"
		case deps.IsMapper:
			marker = " [mapper]"
		case deps.IsValidator:
			marker = " [validator]"
		case deps.IsService:
			marker = " [service]"
		}
		w.Println("%s%s", name, marker)
		for _, ref := range deps.Collaborators {
			w.Nested("%s %s", ref.Type, ref.Field)
		}
	}
	return sb.String()
}

// Mocks formats the derived mock requirements.
func (r *Renderer) Mocks(target string, mocks domain.MockRequirements) string {
	var sb strings.Builder
	w := NewWriter(&sb)
	r.title(w, fmt.Sprintf("Required mocks for %s", target))

	if len(mocks) == 0 {
		w.Println("No collaborators to mock")
		return sb.String()
	}

	for _, field := range mocks.Collaborators() {
		w.Println("@Mock %s", field)
		for _, method := range mocks.Methods(field) {
			w.Item("stub %s", method)
		}
	}
	return sb.String()
}

// Attempts formats a validation trail, one line per attempt.
func (r *Renderer) Attempts(attempts []domain.ValidationAttempt) string {
	var sb strings.Builder
	w := NewWriter(&sb)
	for _, a := range attempts {
		icon := BoolIcon(a.Success)
		if r.pretty {
			if a.Success {
				icon = color.GreenString(icon)
			} else {
				icon = color.RedString(icon)
			}
		}
		if a.Failure != nil {
			w.Println("%s attempt %d: %s/%s: %s",
				icon, a.Index, a.Failure.Phase, a.Failure.Kind, Truncate(a.Failure.Message, 120))
		} else {
			w.Println("%s attempt %d: passed", icon, a.Index)
		}
	}
	return sb.String()
}

// Runs formats run history, newest first.
func (r *Renderer) Runs(runs []*domain.Run) string {
	if len(runs) == 0 {
		return "No runs recorded\n"
	}

	var sb strings.Builder
	w := NewWriter(&sb)
	r.title(w, "Generation history")

	for _, run := range runs {
		icon := BoolIcon(run.Success)
		if r.pretty {
			if run.Success {
				icon = color.GreenString(icon)
			} else {
				icon = color.RedString(icon)
			}
		}
		validated := ""
		if run.Validated {
			validated = fmt.Sprintf(" validated(%d attempts)", len(run.Attempts))
		}
		w.Println("%s %s %s %s%s",
			icon, run.CreatedAt.Format("2006-01-02 15:04"), run.Target.Class, run.TestType, validated)
	}
	return sb.String()
}
