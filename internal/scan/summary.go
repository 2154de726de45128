package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	maxEntitiesInSummary   = 30
	maxValidatorsInSummary = 20
	maxEnumsInSummary      = 50
)

// Summary renders the scanned project as a markdown block suitable for
// inclusion in an LLM system prompt.
func (g *Gatherer) Summary() string {
	ctx, err := g.Context()
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("## PROJECT STRUCTURE SUMMARY\n\n")

	if len(ctx.Entities) > 0 {
		b.WriteString("### Entities:\n")
		for _, name := range sortedKeysLimit(keysOfFiles(ctx.Entities), maxEntitiesInSummary) {
			info := ctx.Entities[name]
			fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(firstN(info.Methods, 5), ", "))
		}
	}

	if len(ctx.Validators) > 0 {
		b.WriteString("\n### Validators (need to be mocked in tests):\n")
		for _, name := range sortedKeysLimit(keysOfFiles(ctx.Validators), maxValidatorsInSummary) {
			info := ctx.Validators[name]
			fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(firstN(info.Methods, 5), ", "))
		}
	}

	if len(ctx.Enums) > 0 {
		b.WriteString("\n### Enums (use ONLY these valid values):\n")
		names := make([]string, 0, len(ctx.Enums))
		for name := range ctx.Enums {
			names = append(names, name)
		}
		for _, name := range sortedKeysLimit(names, maxEnumsInSummary) {
			if values := ctx.Enums[name].Values; len(values) > 0 {
				fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(values, ", "))
			}
		}
	}

	b.WriteString("\n### Testing Patterns Used in This Project:\n")
	fmt.Fprintf(&b, "- Uses Instancio: %t\n", ctx.Patterns.UsesInstancio)
	fmt.Fprintf(&b, "- Uses Mockito: %t\n", ctx.Patterns.UsesMockito)
	fmt.Fprintf(&b, "- Uses AssertJ: %t\n", ctx.Patterns.UsesAssertJ)

	return b.String()
}

func keysOfFiles(m map[string]FileInfo) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

func sortedKeysLimit(names []string, limit int) []string {
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Metadata loads the project's metadata.txt, if present. The file
// carries entity relationships and sample records maintained by hand.
func (g *Gatherer) Metadata() string {
	data, err := os.ReadFile(filepath.Join(g.root, "metadata.txt"))
	if err != nil {
		return ""
	}
	return string(data)
}

// MetadataSummary condenses metadata.txt to the ER diagram and sample
// record sections to keep prompts small.
func (g *Gatherer) MetadataSummary() string {
	full := g.Metadata()
	if full == "" {
		return "No metadata available."
	}

	var kept []string
	include := false
	sectionCount := 0
	for _, line := range strings.Split(full, "\n") {
		switch {
		case strings.Contains(line, "ER DIAGRAM") || strings.Contains(line, "ENTITY LIST") || strings.Contains(line, "SAMPLE RECORDS"):
			include = true
			sectionCount = 0
		case strings.HasPrefix(line, "===") && include:
			sectionCount++
			if sectionCount > 1 {
				include = false
			}
		}
		if include {
			kept = append(kept, line)
		}
		if len(kept) > 200 {
			break
		}
	}

	if len(kept) == 0 {
		if len(full) > 3000 {
			return full[:3000]
		}
		return full
	}
	return strings.Join(kept, "\n")
}

// Architecture loads docs/architecture.md, if present.
func (g *Gatherer) Architecture() string {
	data, err := os.ReadFile(filepath.Join(g.root, "docs", "architecture.md"))
	if err != nil {
		return ""
	}
	return string(data)
}

// ArchitectureSummary extracts the coding conventions section from the
// architecture document.
func (g *Gatherer) ArchitectureSummary() string {
	full := g.Architecture()
	if full == "" {
		return "No architecture documentation available."
	}
	if i := strings.Index(full, "## Coding Conventions"); i >= 0 {
		end := i + 4000
		if end > len(full) {
			end = len(full)
		}
		return full[i:end]
	}
	if len(full) > 2000 {
		return full[:2000]
	}
	return full
}
