package graph

import (
	"context"
	"fmt"
)

// StoredDependency is one DEPENDS_ON edge read back from the database.
type StoredDependency struct {
	Class string
	Field string
}

const dependenciesQuery = `
MATCH (c:Class {name: $name})-[r:DEPENDS_ON]->(d:Class)
RETURN d.name AS name, r.field AS field
ORDER BY name`

const dependentCountQuery = `
MATCH (d:Class)-[:DEPENDS_ON]->(c:Class {name: $name})
RETURN count(d) AS dependents`

// Querier reads previously exported dependency data back out of the
// graph database.
type Querier struct {
	driver GraphReader
}

// NewQuerier creates a querier over a read connection.
func NewQuerier(driver GraphReader) *Querier {
	return &Querier{driver: driver}
}

// Dependencies returns the stored outgoing edges of a class, ordered by
// collaborator name. An unknown class yields an empty slice, matching
// the in-memory builder's behavior for unresolved names.
func (q *Querier) Dependencies(ctx context.Context, class string) ([]StoredDependency, error) {
	records, err := q.driver.Execute(ctx, dependenciesQuery, map[string]any{"name": class})
	if err != nil {
		return nil, fmt.Errorf("query dependencies of %s: %w", class, err)
	}

	deps := make([]StoredDependency, 0, len(records))
	for _, rec := range records {
		deps = append(deps, StoredDependency{
			Class: GetString(rec, "name"),
			Field: GetString(rec, "field"),
		})
	}
	return deps, nil
}

// DependentCount returns how many stored classes depend on this one.
func (q *Querier) DependentCount(ctx context.Context, class string) (int, error) {
	records, err := q.driver.Execute(ctx, dependentCountQuery, map[string]any{"name": class})
	if err != nil {
		return 0, fmt.Errorf("query dependents of %s: %w", class, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return GetInt(records[0], "dependents"), nil
}
