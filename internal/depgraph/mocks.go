package depgraph

import "github.com/joss/testsmith/internal/domain"

// RequiredMocks derives the per-collaborator stub set for a target unit
// from a built graph. A target missing from the graph yields an empty
// map: that is a valid terminal state (the entry unit may have had no
// extractable name), not an error.
//
// Every declared collaborator is seeded with an empty set so it shows
// up as inject-only even when never called. Calls through `this` are
// followed exactly one hop into the private helper's own call sites,
// which covers the common delegate-to-helper pattern without unbounded
// recursion.
func RequiredMocks(graph domain.DependencyGraph, targetName string) domain.MockRequirements {
	mocks := make(domain.MockRequirements)

	target, ok := graph[targetName]
	if !ok {
		return mocks
	}

	for _, ref := range target.Collaborators {
		if _, exists := mocks[ref.Field]; !exists {
			mocks[ref.Field] = make(map[string]bool)
		}
	}

	for _, sites := range target.Calls {
		for _, site := range sites {
			if site.Receiver == "this" {
				foldHelperCalls(target, site.Method, mocks)
				continue
			}
			if _, known := mocks[site.Receiver]; known {
				mocks.Add(site.Receiver, site.Method)
			}
		}
	}

	return mocks
}

// foldHelperCalls adds the collaborator calls made inside one private
// helper to the requirement sets. One hop only: a helper calling
// another helper is not followed further.
func foldHelperCalls(target *domain.UnitDeps, helper string, mocks domain.MockRequirements) {
	for _, site := range target.Calls[helper] {
		if site.Receiver == "this" {
			continue
		}
		if _, known := mocks[site.Receiver]; known {
			mocks.Add(site.Receiver, site.Method)
		}
	}
}
