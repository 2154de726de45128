package domain

import "sort"

// CollaboratorRef is a name-based reference from one unit to another,
// inferred from a field declaration. Type is used for file resolution,
// Field for matching call receivers. The link is weak: it is resolved
// lazily by file search and may resolve to nothing.
type CollaboratorRef struct {
	Type  string `json:"type"`
	Field string `json:"field"`
}

// UnitDeps is one node of a dependency graph: a unit plus its outgoing
// collaborator references and per-method call sites.
type UnitDeps struct {
	Name          string                `json:"name"`
	Path          string                `json:"path"`
	Unit          *SourceUnit           `json:"-"`
	Collaborators []CollaboratorRef     `json:"collaborators,omitempty"`
	Calls         map[string][]CallSite `json:"calls,omitempty"`

	IsInterface bool `json:"is_interface,omitempty"`
	IsMapper    bool `json:"is_mapper,omitempty"`
	IsValidator bool `json:"is_validator,omitempty"`
	IsService   bool `json:"is_service,omitempty"`
}

// Collaborator returns the reference whose field name matches recv, or nil.
func (d *UnitDeps) Collaborator(recv string) *CollaboratorRef {
	for i := range d.Collaborators {
		if d.Collaborators[i].Field == recv {
			return &d.Collaborators[i]
		}
	}
	return nil
}

// DependencyGraph maps unit name to its analyzed node. It covers a
// target unit and its transitive collaborator closure, built fresh per
// query.
type DependencyGraph map[string]*UnitDeps

// Names returns the unit names in the graph, sorted.
func (g DependencyGraph) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MockRequirements maps a collaborator field name to the set of method
// names that must be stubbed for the target unit. An empty set means
// the collaborator only needs to be injected, not stubbed.
type MockRequirements map[string]map[string]bool

// Add records that a collaborator method needs a stub. Duplicates collapse.
func (m MockRequirements) Add(collaborator, method string) {
	set, ok := m[collaborator]
	if !ok {
		set = make(map[string]bool)
		m[collaborator] = set
	}
	set[method] = true
}

// Methods returns the stubbed method descriptors for a collaborator,
// sorted, each rendered as "name()".
func (m MockRequirements) Methods(collaborator string) []string {
	set := m[collaborator]
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name+"()")
	}
	sort.Strings(out)
	return out
}

// Collaborators returns the collaborator field names, sorted.
func (m MockRequirements) Collaborators() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
