package analyze

import (
	"regexp"

	"github.com/joss/testsmith/internal/domain"
)

var (
	// Collaborator call: receiver name ends with a conventional suffix.
	collabCallRe = regexp.MustCompile(`(\w+(?:Service|Validator|Dao|Mapper|Repository|Helper))\.(\w+)\s*\(`)

	// Candidate intra-unit call: bare lower-case identifier followed by
	// an argument list.
	localCallRe = regexp.MustCompile(`\b([a-z]\w*)\s*\(`)
)

// AnalyzeCalls scans each method body of a unit for calls worth
// simulating. Only two shapes are captured: calls on collaborator-shaped
// receivers, and calls to private methods of the same unit (reported
// with receiver "this"). This is a deliberate precision trade-off, not
// a general call-graph extractor.
func AnalyzeCalls(unit *domain.SourceUnit) map[string][]domain.CallSite {
	calls := make(map[string][]domain.CallSite)
	for _, method := range unit.Methods {
		if method.Body == "" {
			continue
		}
		sites := scanBody(unit, method.Body)
		if len(sites) > 0 {
			calls[method.Name] = sites
		}
	}
	return calls
}

func scanBody(unit *domain.SourceUnit, body string) []domain.CallSite {
	seen := make(map[domain.CallSite]bool)
	var sites []domain.CallSite

	add := func(site domain.CallSite) {
		if !seen[site] {
			seen[site] = true
			sites = append(sites, site)
		}
	}

	for _, m := range collabCallRe.FindAllStringSubmatch(body, -1) {
		add(domain.CallSite{Receiver: m[1], Method: m[2]})
	}

	for _, m := range localCallRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		// Keep only verified private methods of this unit; anything
		// else is a local variable call or a library function.
		if isPrivateMethod(unit, name) {
			add(domain.CallSite{Receiver: "this", Method: name})
		}
	}

	return sites
}

// isPrivateMethod checks the unit's extracted method facts for a
// non-public method with the given name.
func isPrivateMethod(unit *domain.SourceUnit, name string) bool {
	m := unit.Method(name)
	return m != nil && !m.Public
}
