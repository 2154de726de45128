package depgraph

import (
	"os"
	"strings"

	"github.com/joss/testsmith/internal/analyze"
	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/logging"
)

// Builder resolves a unit's declared collaborators to their own source
// files, producing a closed dependency graph. Resolution is name-based
// and weak: a collaborator that cannot be found is dropped, never an
// error.
type Builder struct {
	extractor *analyze.Extractor
	finder    Finder
	log       *logging.Logger

	// pathCache memoizes name-to-path lookups across Build calls.
	pathCache map[string]string
}

// NewBuilder creates a builder using the given file finder.
func NewBuilder(finder Finder) *Builder {
	return &Builder{
		extractor: analyze.NewExtractor(),
		finder:    finder,
		log:       logging.New("depgraph"),
		pathCache: make(map[string]string),
	}
}

// Build walks the collaborator closure of the entry file breadth-first.
// A visited set keyed by file path guarantees each file is analyzed at
// most once, so reference cycles terminate and dense graphs do not blow
// up. Units that fail to analyze are logged and skipped.
func (b *Builder) Build(entryPath string) domain.DependencyGraph {
	graph := make(domain.DependencyGraph)
	queue := []string{entryPath}
	visited := map[string]bool{}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}
		visited[path] = true

		node, err := b.analyzeUnit(path)
		if err != nil {
			b.log.Warn("unit_analysis_skipped", map[string]any{"path": path}, err)
			continue
		}
		graph[node.Name] = node

		for _, ref := range node.Collaborators {
			depPath := b.findPath(ref.Type)
			if depPath == "" || visited[depPath] {
				continue
			}
			queue = append(queue, depPath)
		}
	}

	return graph
}

// analyzeUnit extracts one file into a graph node.
func (b *Builder) analyzeUnit(path string) (*domain.UnitDeps, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &analyze.NotFoundError{Path: path}
	}

	unit, err := b.extractor.Extract(path)
	if err != nil {
		return nil, err
	}

	node := &domain.UnitDeps{
		Name:          unit.Name,
		Path:          path,
		Unit:          unit,
		Collaborators: collaboratorRefs(unit),
		Calls:         analyze.AnalyzeCalls(unit),
		IsInterface:   unit.Kind == domain.KindInterface,
		IsMapper:      strings.Contains(unit.Name, "Mapper") || hasAnnotation(unit, "Mapper"),
		IsValidator:   strings.Contains(unit.Name, "Validator"),
		IsService:     strings.Contains(unit.Name, "Service"),
	}
	return node, nil
}

// collaboratorRefs derives weak references from field declarations whose
// type matches a collaborator suffix. Generic parameters are stripped so
// SearchMapper<Project> resolves to SearchMapper.java.
func collaboratorRefs(unit *domain.SourceUnit) []domain.CollaboratorRef {
	seen := map[string]bool{}
	var refs []domain.CollaboratorRef
	for _, f := range unit.Fields {
		typ := genericRe.ReplaceAllString(f.Type, "")
		if !domain.IsCollaboratorName(typ) || seen[typ] {
			continue
		}
		seen[typ] = true
		refs = append(refs, domain.CollaboratorRef{Type: typ, Field: f.Name})
	}
	return refs
}

func hasAnnotation(unit *domain.SourceUnit, name string) bool {
	for _, a := range unit.Annotations {
		if a == name {
			return true
		}
	}
	return false
}

// findPath resolves a class name to its first candidate file. The first
// match on an ambiguous name is a known limitation carried over from
// the resolution contract, not a tie-break rule.
func (b *Builder) findPath(className string) string {
	if cached, ok := b.pathCache[className]; ok {
		return cached
	}
	path := ""
	if matches := b.finder.Find(className); len(matches) > 0 {
		path = matches[0]
	}
	b.pathCache[className] = path
	return path
}
