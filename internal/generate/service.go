// Package generate orchestrates one test-generation run: resolve the
// target class, extract its structure, derive mock requirements, build
// the prompts, and drive the model. The validation loop plugs in
// through the Repairer adapter.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joss/testsmith/internal/analyze"
	"github.com/joss/testsmith/internal/depgraph"
	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/llm"
	"github.com/joss/testsmith/internal/logging"
	"github.com/joss/testsmith/internal/prompt"
	"github.com/joss/testsmith/internal/scan"
	"github.com/joss/testsmith/internal/validate"
)

// ErrClassNotFound indicates no source file matched the class name,
// not even fuzzily.
var ErrClassNotFound = errors.New("class not found in source tree")

// ClassFinder extends the path finder with fuzzy lookup for CLI
// convenience.
type ClassFinder interface {
	depgraph.Finder
	FindFuzzy(name string) []string
}

// Service wires the analysis pipeline to the model.
type Service struct {
	extractor *analyze.Extractor
	finder    ClassFinder
	builder   *depgraph.Builder
	prompts   *prompt.Builder
	conv      *llm.Conversation
	log       *logging.Logger
}

// New creates a generation service rooted at the Maven source root.
func New(finder ClassFinder, gatherer *scan.Gatherer, client llm.Client) *Service {
	prompts := prompt.NewBuilder(gatherer)
	return &Service{
		extractor: analyze.NewExtractor(),
		finder:    finder,
		builder:   depgraph.NewBuilder(finder),
		prompts:   prompts,
		conv:      llm.NewConversation(client, prompts.SystemPrompt()),
		log:       logging.New("generate"),
	}
}

// Resolve finds the source path for a class name. Exact name first,
// fuzzy substring match as a fallback; the first candidate wins.
func (s *Service) Resolve(className string) (string, error) {
	if paths := s.finder.Find(className); len(paths) > 0 {
		return paths[0], nil
	}
	if paths := s.finder.FindFuzzy(className); len(paths) > 0 {
		s.log.Info("fuzzy_match", map[string]any{"query": className, "path": paths[0]})
		return paths[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrClassNotFound, className)
}

// Analyze extracts the structural facts for a class.
func (s *Service) Analyze(className string) (*domain.SourceUnit, error) {
	path, err := s.Resolve(className)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(path)
}

// Graph builds the dependency graph rooted at a class.
func (s *Service) Graph(className string) (domain.DependencyGraph, error) {
	path, err := s.Resolve(className)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(path), nil
}

// Mocks derives the mock requirements for a class.
func (s *Service) Mocks(className string) (domain.MockRequirements, error) {
	unit, err := s.Analyze(className)
	if err != nil {
		return nil, err
	}
	graph, err := s.Graph(className)
	if err != nil {
		return nil, err
	}
	return depgraph.RequiredMocks(graph, unit.Name), nil
}

// Generate produces a test candidate for the class. The returned code
// has markdown fences stripped but is otherwise exactly what the model
// wrote; validation is the caller's concern.
func (s *Service) Generate(ctx context.Context, className string, integration bool) (string, *domain.SourceUnit, error) {
	unit, err := s.Analyze(className)
	if err != nil {
		return "", nil, err
	}

	related := s.relatedFiles(unit)

	var p string
	if integration {
		p = s.prompts.IntegrationTest(unit, related)
	} else {
		graph, err := s.Graph(className)
		if err != nil {
			return "", nil, err
		}
		mocks := depgraph.RequiredMocks(graph, unit.Name)
		p = s.prompts.UnitTest(unit, related, mocks)
	}

	s.log.Info("prompt_built", map[string]any{
		"class": unit.Name, "integration": integration, "chars": len(p),
	})

	reply, err := s.conv.Send(ctx, p)
	if err != nil {
		return "", nil, fmt.Errorf("generate test: %w", err)
	}
	return validate.CleanCode(reply), unit, nil
}

// RecommendedTestType suggests a test type from naming conventions.
// ServiceImpl and Controller classes touch enough Spring wiring that an
// integration test pays off; mappers, validators, and plain classes
// stay unit.
func RecommendedTestType(className string) string {
	if strings.Contains(className, "ServiceImpl") || strings.Contains(className, "Controller") {
		return "integration"
	}
	return "unit"
}

// Refine applies user feedback to a previously generated test, in the
// same conversation so the model keeps its context.
func (s *Service) Refine(ctx context.Context, currentCode, feedback string) (string, error) {
	reply, err := s.conv.Send(ctx, s.prompts.Refinement(currentCode, feedback))
	if err != nil {
		return "", fmt.Errorf("refine test: %w", err)
	}
	return validate.CleanCode(reply), nil
}

var (
	usesMappersRe = regexp.MustCompile(`@Mapper\s*\([^)]*uses\s*=\s*\{([^}]+)\}`)
	usesMapperRe  = regexp.MustCompile(`(\w+Mapper)\.class`)
	genericArgRe  = regexp.MustCompile(`<(\w+)>`)
	paramAnnotRe  = regexp.MustCompile(`@\w+\s*`)
	inOutDtoRe    = regexp.MustCompile(`(In|Out)Dto$`)
)

// targetSuffixes get stripped from the unit name to recover the base
// domain name (OrderServiceImpl -> Order) the Entity and DTO container
// files are named after.
var targetSuffixes = []string{"ServiceImpl", "Service", "Controller", "Validator", "Mapper"}

// relatedFiles collects prompt context sources: collaborator field
// types, the target's Entity and DTO container, and for mapper targets
// the DTO and Entity types named in mapping signatures plus the
// dependent mappers from @Mapper(uses = {...}). Unresolvable names are
// skipped.
func (s *Service) relatedFiles(unit *domain.SourceUnit) map[string]prompt.RelatedFile {
	related := make(map[string]prompt.RelatedFile)
	for _, f := range unit.Fields {
		typ := f.Type
		if i := strings.IndexByte(typ, '<'); i > 0 {
			typ = typ[:i]
		}
		if !domain.IsCollaboratorName(typ) {
			continue
		}
		s.addRelated(related, f.Name, typ)
	}

	if base := baseName(unit.Name); base != "" {
		s.addRelated(related, "entity", base+"Entity")
		// The DTO container shares the base name; only worth sending
		// when it actually declares the In/Out DTO classes.
		if rf, ok := s.readClass(base); ok && (strings.Contains(rf.Content, "InDto") || strings.Contains(rf.Content, "OutDto")) {
			related["dto"] = rf
		}
	}

	if strings.HasSuffix(unit.Name, "Mapper") {
		for _, typ := range mapperTypes(unit) {
			class := typ
			if inOutDtoRe.MatchString(typ) {
				// In/Out DTOs are nested classes of the container file.
				class = inOutDtoRe.ReplaceAllString(typ, "")
			}
			s.addRelated(related, class, class)
		}
		for _, m := range usesMappers(unit.Source) {
			s.addRelated(related, m, m)
		}
	}

	return related
}

// readClass loads the source of a class by name, first match wins.
func (s *Service) readClass(className string) (prompt.RelatedFile, bool) {
	paths := s.finder.Find(className)
	if len(paths) == 0 {
		return prompt.RelatedFile{}, false
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		return prompt.RelatedFile{}, false
	}
	return prompt.RelatedFile{Path: paths[0], Content: string(data)}, true
}

// addRelated resolves and stores a class source unless the key is
// already taken.
func (s *Service) addRelated(related map[string]prompt.RelatedFile, key, className string) {
	if _, ok := related[key]; ok {
		return
	}
	if rf, ok := s.readClass(className); ok {
		related[key] = rf
	}
}

// baseName strips the first matching target suffix from a unit name.
// Empty result means the name was nothing but a suffix.
func baseName(name string) string {
	for _, suffix := range targetSuffixes {
		if strings.HasSuffix(name, suffix) && name != suffix {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return ""
}

// mapperTypes collects the DTO and Entity type names a mapper's method
// signatures reference, generic arguments unwrapped and parameter
// annotations like @MappingTarget stripped.
func mapperTypes(unit *domain.SourceUnit) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(typ string) {
		if m := genericArgRe.FindStringSubmatch(typ); m != nil {
			typ = m[1]
		}
		if !isDtoOrEntityName(typ) || seen[typ] {
			return
		}
		seen[typ] = true
		out = append(out, typ)
	}

	for _, m := range unit.Methods {
		add(m.ReturnType)
		for _, p := range m.Parameters {
			p = strings.TrimSpace(paramAnnotRe.ReplaceAllString(p, ""))
			if fields := strings.Fields(p); len(fields) > 0 {
				add(fields[0])
			}
		}
	}
	return out
}

func isDtoOrEntityName(name string) bool {
	return strings.HasSuffix(name, "Entity") || strings.HasSuffix(name, "Dto")
}

// usesMappers extracts dependent mapper names from a MapStruct
// @Mapper(uses = {...}) annotation.
func usesMappers(source string) []string {
	m := usesMappersRe.FindStringSubmatch(source)
	if m == nil {
		return nil
	}
	var out []string
	for _, mm := range usesMapperRe.FindAllStringSubmatch(m[1], -1) {
		out = append(out, mm[1])
	}
	return out
}

// Repairer adapts the conversation to the validation loop.
type Repairer struct {
	service *Service
}

// NewRepairer creates the loop-facing repair adapter.
func (s *Service) NewRepairer() *Repairer {
	return &Repairer{service: s}
}

// Repair asks the model to fix a failing candidate.
func (r *Repairer) Repair(ctx context.Context, req validate.RepairRequest) (string, error) {
	p := r.service.prompts.Repair(req.Code, req.Failure, req.RawOutput)
	reply, err := r.service.conv.Send(ctx, p)
	if err != nil {
		return "", fmt.Errorf("repair test: %w", err)
	}
	return reply, nil
}

var _ validate.Repairer = (*Repairer)(nil)
