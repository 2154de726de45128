package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/testsmith/internal/domain"
)

// recordingDriver captures write queries for assertions.
type recordingDriver struct {
	queries []string
	params  []map[string]any
	err     error
}

func (r *recordingDriver) ExecuteWrite(_ context.Context, query string, params map[string]any) error {
	if r.err != nil {
		return r.err
	}
	r.queries = append(r.queries, query)
	r.params = append(r.params, params)
	return nil
}

func sampleGraph() domain.DependencyGraph {
	return domain.DependencyGraph{
		"OrderServiceImpl": &domain.UnitDeps{
			Name:      "OrderServiceImpl",
			Path:      "src/main/java/com/shop/OrderServiceImpl.java",
			IsService: true,
			Collaborators: []domain.CollaboratorRef{
				{Type: "OrderDao", Field: "orderDao"},
				{Type: "OrderValidator", Field: "orderValidator"},
			},
		},
		"OrderDao": &domain.UnitDeps{
			Name: "OrderDao",
			Path: "src/main/java/com/shop/OrderDao.java",
		},
	}
}

func TestExportWritesNodesAndEdges(t *testing.T) {
	driver := &recordingDriver{}
	exporter := NewExporter(driver, nil)

	nodes, edges, err := exporter.Export(context.Background(), sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 2, edges)

	// Nodes first, then edges, each via MERGE.
	require.Len(t, driver.queries, 4)
	assert.Contains(t, driver.queries[0], "MERGE (c:Class")
	assert.Contains(t, driver.queries[2], "DEPENDS_ON")

	// Graph iteration is name-ordered: OrderDao before OrderServiceImpl.
	assert.Equal(t, "OrderDao", driver.params[0]["name"])
	assert.Equal(t, "OrderServiceImpl", driver.params[1]["name"])
	assert.Equal(t, true, driver.params[1]["service"])

	// Edges keyed by type, carrying the field name.
	assert.Equal(t, "OrderDao", driver.params[2]["to"])
	assert.Equal(t, "orderDao", driver.params[2]["field"])
	assert.Equal(t, "OrderValidator", driver.params[3]["to"])
}

func TestExportEmptyGraph(t *testing.T) {
	driver := &recordingDriver{}
	nodes, edges, err := NewExporter(driver, nil).Export(context.Background(), domain.DependencyGraph{})
	require.NoError(t, err)
	assert.Zero(t, nodes)
	assert.Zero(t, edges)
	assert.Empty(t, driver.queries)
}

func TestExportPropagatesWriteError(t *testing.T) {
	driver := &recordingDriver{err: errors.New("connection refused")}
	_, _, err := NewExporter(driver, nil).Export(context.Background(), sampleGraph())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge class")
}

func TestRecordHelpers(t *testing.T) {
	r := Record{"name": "OrderDao", "count": int64(3), "ratio": 2.9}

	assert.Equal(t, "OrderDao", GetString(r, "name"))
	assert.Equal(t, "", GetString(r, "missing"))
	assert.Equal(t, 3, GetInt(r, "count"))
	assert.Equal(t, 2, GetInt(r, "ratio"))
	assert.Equal(t, 0, GetInt(r, "missing"))
}
