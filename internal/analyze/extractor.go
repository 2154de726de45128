// Package analyze extracts structural facts from Java sources using
// pattern-based scanning. There is no grammar here: every fact is
// best-effort, and input that defeats a pattern degrades to empty
// defaults instead of failing.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joss/testsmith/internal/domain"
)

var (
	packageRe = regexp.MustCompile(`package\s+([\w.]+);`)
	importRe  = regexp.MustCompile(`import\s+(?:static\s+)?([\w.*]+);`)

	// Declaration: optional modifiers, class/interface keyword, name,
	// optional extends/implements clauses.
	declRe = regexp.MustCompile(`(?:public\s+)?(?:(abstract)\s+)?(class|interface)\s+(\w+)(?:\s+extends\s+(\w+))?(?:\s+implements\s+([\w,\s]+))?`)

	annotationRe = regexp.MustCompile(`@(\w+)(?:\([^)]*\))?`)

	// Field: optional annotations/modifiers, type (with one level of
	// generics), name, semicolon.
	fieldRe = regexp.MustCompile(`(?:@\w+\s+)*(?:private|protected|public)?\s*(?:final\s+)?(\w+(?:<[^>]+>)?)\s+(\w+)\s*;`)

	// Method: optional annotations, optional access modifier, optional
	// static/final/abstract/default, return type, name, parameter list.
	methodRe = regexp.MustCompile(`((?:@\w+(?:\([^)]*\))?\s*)+)?(?:(public|private|protected)\s+)?(?:(?:static|final|abstract|default)\s+)*(\w+(?:<[^>]+>)?)\s+(\w+)\s*\(([^)]*)\)`)

	methodAnnotationRe = regexp.MustCompile(`@(\w+)`)
)

// keywords that the method pattern mistakes for a return type.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "new": true, "else": true, "do": true, "try": true,
	"throw": true, "synchronized": true,
}

// NotFoundError indicates the source file to analyze does not exist.
// This is distinct from a parse degradation, which is never an error.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// Extractor parses Java source files into structural fact records.
// Safe for concurrent use; it holds no mutable state.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads and parses one source file. A missing file returns
// *NotFoundError; any readable content parses without error.
func (e *Extractor) Extract(path string) (*domain.SourceUnit, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &NotFoundError{Path: path}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Parse(string(content), path), nil
}

// Parse extracts structural facts from raw source text. It never fails:
// unrecognized text yields a unit with default-valued fields and a name
// derived from the file's base name.
func (e *Extractor) Parse(source, path string) *domain.SourceUnit {
	unit := &domain.SourceUnit{
		Path:   path,
		Kind:   domain.KindClass,
		Source: source,
	}

	if m := packageRe.FindStringSubmatch(source); m != nil {
		unit.Package = m[1]
	}
	for _, m := range importRe.FindAllStringSubmatch(source, -1) {
		unit.Imports = append(unit.Imports, m[1])
	}

	declStart := len(source)
	if m := declRe.FindStringSubmatchIndex(source); m != nil {
		groups := declRe.FindStringSubmatch(source)
		declStart = m[0]
		unit.Name = groups[3]
		unit.Kind = domain.UnitKind(groups[2])
		if groups[1] != "" {
			unit.Kind = domain.KindAbstract
		}
		unit.Extends = groups[4]
		if groups[5] != "" {
			for _, impl := range strings.Split(groups[5], ",") {
				if impl = strings.TrimSpace(impl); impl != "" {
					unit.Implements = append(unit.Implements, impl)
				}
			}
		}
	}
	if unit.Name == "" {
		unit.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	// Class-level annotations live before the declaration keyword;
	// scanning only that prefix keeps cost bounded and avoids picking
	// up method annotations.
	for _, m := range annotationRe.FindAllStringSubmatch(source[:declStart], -1) {
		unit.Annotations = append(unit.Annotations, m[1])
	}

	unit.Fields = extractFields(source)
	unit.Methods = extractMethods(source)
	return unit
}

func extractFields(source string) []domain.FieldFact {
	var fields []domain.FieldFact
	for _, m := range fieldRe.FindAllStringSubmatch(source, -1) {
		typ, name := m[1], m[2]
		if controlKeywords[typ] || typ == "package" || typ == "import" {
			continue
		}
		fields = append(fields, domain.FieldFact{Type: typ, Name: name})
	}
	return fields
}

func extractMethods(source string) []domain.MethodFact {
	var methods []domain.MethodFact
	for _, idx := range methodRe.FindAllStringSubmatchIndex(source, -1) {
		groups := matchGroups(source, idx)
		returnType, name := groups[3], groups[4]
		if controlKeywords[returnType] || controlKeywords[name] {
			continue
		}

		var annotations []string
		for _, am := range methodAnnotationRe.FindAllStringSubmatch(groups[1], -1) {
			annotations = append(annotations, am[1])
		}

		var params []string
		for _, p := range strings.Split(groups[5], ",") {
			if p = strings.TrimSpace(p); p != "" {
				params = append(params, p)
			}
		}

		methods = append(methods, domain.MethodFact{
			Name:        name,
			ReturnType:  returnType,
			Parameters:  params,
			Annotations: annotations,
			Public:      groups[2] == "public" || groups[2] == "",
			Body:        extractBody(source, idx[1]),
		})
	}
	return methods
}

// matchGroups converts FindStringSubmatchIndex output to group strings.
func matchGroups(source string, idx []int) []string {
	groups := make([]string, len(idx)/2)
	for i := range groups {
		start, end := idx[2*i], idx[2*i+1]
		if start >= 0 {
			groups[i] = source[start:end]
		}
	}
	return groups
}

// extractBody finds the method body by brace-depth counting from the
// position just past the parameter list, so nested blocks do not cut
// the body short. The result is capped at domain.BodyExcerptLimit.
func extractBody(source string, start int) string {
	gap := source[start:]
	open := strings.IndexByte(gap, '{')
	if open < 0 {
		return ""
	}
	// A semicolon before the brace means an abstract or interface
	// method; the brace belongs to something else.
	if semi := strings.IndexByte(gap, ';'); semi >= 0 && semi < open {
		return ""
	}
	pos := start + open + 1
	depth := 1
	for pos < len(source) && depth > 0 {
		switch source[pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		pos++
	}
	body := source[start+open+1 : pos-1]
	if len(body) > domain.BodyExcerptLimit {
		body = body[:domain.BodyExcerptLimit]
	}
	return body
}
