// Package domain defines the core entities shared across testsmith:
// structural facts extracted from Java sources, dependency graphs, mock
// requirements, and validation outcomes.
package domain

import "strings"

// BodyExcerptLimit caps how much of a method body is retained for call
// analysis and prompt building.
const BodyExcerptLimit = 800

// UnitKind classifies a source unit's declaration.
type UnitKind string

const (
	KindClass     UnitKind = "class"
	KindInterface UnitKind = "interface"
	KindAbstract  UnitKind = "abstract"
)

// FieldFact is one declared field: type plus name.
type FieldFact struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// String renders the field as it was declared, "Type name".
func (f FieldFact) String() string {
	return f.Type + " " + f.Name
}

// MethodFact is one extracted method declaration.
// Body holds a bounded excerpt of the method body (BodyExcerptLimit),
// enough for call-site scanning without retaining whole files.
type MethodFact struct {
	Name        string   `json:"name"`
	ReturnType  string   `json:"return_type"`
	Parameters  []string `json:"parameters,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
	Public      bool     `json:"public"`
	Body        string   `json:"-"`
}

// Signature renders "returnType name(params)".
func (m MethodFact) Signature() string {
	return m.ReturnType + " " + m.Name + "(" + strings.Join(m.Parameters, ", ") + ")"
}

// SourceUnit is the structural fact record for one Java source file.
// Extraction is heuristic: every field may be empty when the source did
// not match a pattern, but Name is always non-empty (falls back to the
// file's base name).
type SourceUnit struct {
	Name        string       `json:"name"`
	Package     string       `json:"package"`
	Path        string       `json:"path"`
	Kind        UnitKind     `json:"kind"`
	Extends     string       `json:"extends,omitempty"`
	Implements  []string     `json:"implements,omitempty"`
	Imports     []string     `json:"imports,omitempty"`
	Annotations []string     `json:"annotations,omitempty"`
	Fields      []FieldFact  `json:"fields,omitempty"`
	Methods     []MethodFact `json:"methods,omitempty"`

	// Source is the full file content, carried for prompt building.
	Source string `json:"-"`
}

// Method returns the named method fact, or nil.
func (u *SourceUnit) Method(name string) *MethodFact {
	for i := range u.Methods {
		if u.Methods[i].Name == name {
			return &u.Methods[i]
		}
	}
	return nil
}

// collaboratorSuffixes are the conventional type-name endings that mark
// a field as an injected collaborator worth mocking.
var collaboratorSuffixes = []string{"Service", "Validator", "Dao", "Mapper", "Repository", "Helper"}

// IsCollaboratorName reports whether a type or receiver name matches a
// conventional collaborator suffix.
func IsCollaboratorName(name string) bool {
	for _, suffix := range collaboratorSuffixes {
		if strings.HasSuffix(name, suffix) && name != suffix {
			return true
		}
	}
	return false
}

// Collaborators returns the declared fields whose types look like
// injected collaborators, generic parameters stripped.
func (u *SourceUnit) Collaborators() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range u.Fields {
		typ := f.Type
		if i := strings.IndexByte(typ, '<'); i > 0 {
			typ = typ[:i]
		}
		if IsCollaboratorName(typ) && !seen[typ] {
			seen[typ] = true
			out = append(out, typ)
		}
	}
	return out
}

// CallSite is one observed call inside a method body. Receiver is the
// collaborator field name, or "this" for intra-unit calls.
type CallSite struct {
	Receiver string `json:"receiver"`
	Method   string `json:"method"`
}

// String renders the call descriptor as "receiver.method()".
func (c CallSite) String() string {
	return c.Receiver + "." + c.Method + "()"
}
