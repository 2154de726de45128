package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/logging"
)

// Exporter writes a built dependency graph into the database. Nodes
// and edges are MERGEd so repeated exports stay idempotent.
type Exporter struct {
	driver GraphWriter
	log    *logging.Logger
}

// NewExporter creates an exporter on the given driver.
func NewExporter(driver GraphWriter, log *logging.Logger) *Exporter {
	if log == nil {
		log = logging.New("graph")
	}
	return &Exporter{driver: driver, log: log}
}

const (
	mergeClassQuery = `
MERGE (c:Class {name: $name})
SET c.path = $path,
    c.interface = $interface,
    c.mapper = $mapper,
    c.validator = $validator,
    c.service = $service`

	mergeDependsOnQuery = `
MATCH (a:Class {name: $from})
MERGE (b:Class {name: $to})
MERGE (a)-[r:DEPENDS_ON]->(b)
SET r.field = $field`
)

// Export MERGEs one Class node per graph entry and a DEPENDS_ON edge
// per resolved collaborator. Returns the number of nodes and edges
// written.
func (e *Exporter) Export(ctx context.Context, g domain.DependencyGraph) (nodes, edges int, err error) {
	for _, name := range g.Names() {
		deps := g[name]
		params := map[string]any{
			"name":      deps.Name,
			"path":      deps.Path,
			"interface": deps.IsInterface,
			"mapper":    deps.IsMapper,
			"validator": deps.IsValidator,
			"service":   deps.IsService,
		}
		if err := e.driver.ExecuteWrite(ctx, mergeClassQuery, params); err != nil {
			return nodes, edges, fmt.Errorf("merge class %s: %w", name, err)
		}
		nodes++
	}

	for _, name := range g.Names() {
		deps := g[name]
		collaborators := append([]domain.CollaboratorRef{}, deps.Collaborators...)
		sort.Slice(collaborators, func(i, j int) bool {
			return collaborators[i].Field < collaborators[j].Field
		})
		for _, ref := range collaborators {
			params := map[string]any{
				"from":  deps.Name,
				"to":    ref.Type,
				"field": ref.Field,
			}
			if err := e.driver.ExecuteWrite(ctx, mergeDependsOnQuery, params); err != nil {
				return nodes, edges, fmt.Errorf("merge edge %s->%s: %w", deps.Name, ref.Type, err)
			}
			edges++
		}
	}

	e.log.Info("graph_exported", map[string]any{"nodes": nodes, "edges": edges})
	return nodes, edges, nil
}
