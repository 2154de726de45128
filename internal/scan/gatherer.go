// Package scan builds a whole-project context snapshot for prompt
// construction. It walks the Maven source and test trees once,
// categorizes Java files by naming convention, and extracts the
// details the generator needs: enum values, public method names,
// injected collaborators, and the testing patterns already in use.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/joss/testsmith/internal/logging"
)

const (
	// maxMethods bounds the method names kept per file.
	maxMethods = 20

	// maxEnumValues bounds the constants kept per enum.
	maxEnumValues = 20

	// testPreviewLines is how much of an existing test is kept for
	// pattern detection.
	testPreviewLines = 100
)

// FileInfo describes a categorized main-tree source file.
type FileInfo struct {
	Name    string
	Path    string
	Methods []string
}

// ServiceInfo is a service implementation plus its injected collaborators.
type ServiceInfo struct {
	FileInfo
	Dependencies []string
}

// EnumInfo is an enum declaration with its constant values.
type EnumInfo struct {
	Name   string
	Path   string
	Values []string
}

// TestInfo is an existing test class with a content preview.
type TestInfo struct {
	Name    string
	Path    string
	Preview string
}

// Patterns records which testing libraries the project's existing
// tests already use.
type Patterns struct {
	UsesInstancio bool
	UsesMockito   bool
	UsesNested    bool
	UsesAssertJ   bool
}

// ProjectContext is the result of a full project scan.
type ProjectContext struct {
	Entities      map[string]FileInfo
	Services      map[string]ServiceInfo
	Mappers       map[string]FileInfo
	Validators    map[string]FileInfo
	Enums         map[string]EnumInfo
	ExistingTests map[string]TestInfo
	Patterns      Patterns
}

var (
	enumDeclRe    = regexp.MustCompile(`enum\s+\w+\s*\{([^}]+)`)
	enumValueRe   = regexp.MustCompile(`\b([A-Z][A-Z0-9_]+)\b`)
	methodSigRe   = regexp.MustCompile(`(?:public|protected)\s+(?:\w+(?:<[^>]+>)?)\s+(\w+)\s*\([^)]*\)`)
	injectedDepRe = regexp.MustCompile(`private\s+(?:final\s+)?(\w+(?:Service|Validator|Dao|Mapper|Repository))\s+\w+`)
)

// Gatherer scans a Maven project and caches the result.
type Gatherer struct {
	root string
	log  *logging.Logger

	ctx     *ProjectContext
	scanErr error
	scanned bool
}

// NewGatherer creates a gatherer rooted at the Maven project directory.
func NewGatherer(root string, log *logging.Logger) *Gatherer {
	if log == nil {
		log = logging.New("scan")
	}
	return &Gatherer{root: root, log: log}
}

// Context returns the project context, scanning on first call.
func (g *Gatherer) Context() (*ProjectContext, error) {
	if !g.scanned {
		g.ctx, g.scanErr = g.build()
		g.scanned = true
	}
	return g.ctx, g.scanErr
}

func (g *Gatherer) build() (*ProjectContext, error) {
	ctx := &ProjectContext{
		Entities:      map[string]FileInfo{},
		Services:      map[string]ServiceInfo{},
		Mappers:       map[string]FileInfo{},
		Validators:    map[string]FileInfo{},
		Enums:         map[string]EnumInfo{},
		ExistingTests: map[string]TestInfo{},
	}

	mainRoot := filepath.Join(g.root, "src", "main", "java")
	testRoot := filepath.Join(g.root, "src", "test", "java")

	if err := g.walk(mainRoot, func(name, rel, content string) {
		g.categorizeMain(ctx, name, rel, content)
	}); err != nil {
		return nil, err
	}
	if err := g.walk(testRoot, func(name, rel, content string) {
		if strings.HasSuffix(name, "Test") {
			ctx.ExistingTests[name] = TestInfo{
				Name:    name,
				Path:    rel,
				Preview: preview(content, testPreviewLines),
			}
		}
	}); err != nil {
		return nil, err
	}

	ctx.Patterns = detectPatterns(ctx.ExistingTests)

	g.log.Info("project_scanned", map[string]any{
		"entities":   len(ctx.Entities),
		"services":   len(ctx.Services),
		"mappers":    len(ctx.Mappers),
		"validators": len(ctx.Validators),
		"enums":      len(ctx.Enums),
		"tests":      len(ctx.ExistingTests),
	})
	return ctx, nil
}

// walk visits every .java file under dir. A missing tree is not an
// error, projects without tests are common.
func (g *Gatherer) walk(dir string, visit func(name, rel, content string)) error {
	if _, err := os.Stat(dir); err != nil {
		return nil
	}
	fsys := os.DirFS(dir)
	return doublestar.GlobWalk(fsys, "**/*.java", func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			g.log.Warn("file_unreadable", map[string]any{"path": path}, err)
			return nil
		}
		name := strings.TrimSuffix(filepath.Base(path), ".java")
		rel, _ := filepath.Rel(g.root, filepath.Join(dir, filepath.FromSlash(path)))
		visit(name, filepath.ToSlash(rel), string(data))
		return nil
	})
}

func (g *Gatherer) categorizeMain(ctx *ProjectContext, name, rel, content string) {
	switch {
	case strings.Contains(content, "public enum "):
		ctx.Enums[name] = EnumInfo{Name: name, Path: rel, Values: enumValues(content)}
	case strings.HasSuffix(name, "Entity"):
		ctx.Entities[name] = FileInfo{Name: name, Path: rel, Methods: methodNames(content)}
	case strings.HasSuffix(name, "ServiceImpl"):
		ctx.Services[name] = ServiceInfo{
			FileInfo:     FileInfo{Name: name, Path: rel, Methods: methodNames(content)},
			Dependencies: injectedDeps(content),
		}
	case strings.HasSuffix(name, "Mapper"):
		ctx.Mappers[name] = FileInfo{Name: name, Path: rel, Methods: methodNames(content)}
	case strings.HasSuffix(name, "Validator"):
		ctx.Validators[name] = FileInfo{Name: name, Path: rel, Methods: methodNames(content)}
	}
}

// enumValues extracts enum constants, stopping at the first semicolon
// so field and method identifiers are not picked up.
func enumValues(content string) []string {
	m := enumDeclRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	body := m[1]
	if i := strings.Index(body, ";"); i >= 0 {
		body = body[:i]
	}
	seen := map[string]bool{}
	var values []string
	for _, vm := range enumValueRe.FindAllStringSubmatch(body, -1) {
		if !seen[vm[1]] {
			seen[vm[1]] = true
			values = append(values, vm[1])
		}
	}
	if len(values) > maxEnumValues {
		values = values[:maxEnumValues]
	}
	return values
}

func methodNames(content string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range methodSigRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	if len(names) > maxMethods {
		names = names[:maxMethods]
	}
	return names
}

func injectedDeps(content string) []string {
	seen := map[string]bool{}
	var deps []string
	for _, m := range injectedDepRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			deps = append(deps, m[1])
		}
	}
	sort.Strings(deps)
	return deps
}

func preview(content string, lines int) string {
	split := strings.Split(content, "\n")
	if len(split) > lines {
		split = split[:lines]
	}
	return strings.Join(split, "\n")
}

func detectPatterns(tests map[string]TestInfo) Patterns {
	var p Patterns
	for _, t := range tests {
		if strings.Contains(t.Preview, "Instancio") {
			p.UsesInstancio = true
		}
		if strings.Contains(t.Preview, "@Mock") {
			p.UsesMockito = true
		}
		if strings.Contains(t.Preview, "@Nested") {
			p.UsesNested = true
		}
		if strings.Contains(t.Preview, "assertThat") {
			p.UsesAssertJ = true
		}
	}
	return p
}

// ServiceDependencies returns the injected collaborators recorded for
// a service, or nil when the service was not found in the scan.
func (g *Gatherer) ServiceDependencies(serviceName string) []string {
	ctx, err := g.Context()
	if err != nil {
		return nil
	}
	if svc, ok := ctx.Services[serviceName]; ok {
		return svc.Dependencies
	}
	return nil
}

// FileContent reads a source file, resolving relative paths against
// the project root. Missing files yield an empty string.
func (g *Gatherer) FileContent(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
