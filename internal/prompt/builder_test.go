package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/scan"
)

func promptProject(t *testing.T) *Builder {
	t.Helper()
	root := t.TempDir()

	statusPath := filepath.Join(root, "src", "main", "java", "com", "shop", "OrderStatus.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(statusPath), 0755))
	require.NoError(t, os.WriteFile(statusPath, []byte(`
package com.shop;
public enum OrderStatus { PENDING, SHIPPED }
`), 0644))

	return NewBuilder(scan.NewGatherer(root, nil))
}

func TestSystemPromptCarriesProjectContext(t *testing.T) {
	b := promptProject(t)

	sys := b.SystemPrompt()
	assert.Contains(t, sys, "expert Java developer")
	assert.Contains(t, sys, "OrderStatus: PENDING, SHIPPED")
	assert.Contains(t, sys, "No architecture documentation available.")
	assert.Contains(t, sys, "NEVER use doNothing() on non-void methods")
	assert.Contains(t, sys, "import org.mockito.junit.jupiter.MockitoExtension;")
}

func TestUnitTestPromptListsMockRequirements(t *testing.T) {
	b := promptProject(t)

	unit := &domain.SourceUnit{
		Name:    "OrderServiceImpl",
		Package: "com.shop",
		Source:  "public class OrderServiceImpl { OrderStatus status; }",
	}
	mocks := domain.MockRequirements{}
	mocks.Add("orderDao", "save")
	mocks.Add("orderValidator", "checkStock")

	p := b.UnitTest(unit, nil, mocks)

	assert.Contains(t, p, "OrderServiceImplTest")
	assert.Contains(t, p, "## METHODS THAT MUST BE MOCKED")
	assert.Contains(t, p, "- orderDao.save()")
	assert.Contains(t, p, "- orderValidator.checkStock()")
	assert.Contains(t, p, "No related files found.")
	// Enum usage in the source resolves against the project scan.
	assert.Contains(t, p, "OrderStatus: PENDING, SHIPPED")
}

func TestUnitTestPromptRelatedFilesSortedAndCapped(t *testing.T) {
	b := promptProject(t)

	related := map[string]RelatedFile{
		"validator": {Path: "src/main/java/V.java", Content: strings.Repeat("x", 4000)},
		"dao":       {Path: "src/main/java/D.java", Content: "class D {}"},
	}
	unit := &domain.SourceUnit{Name: "S", Package: "com.shop", Source: "class S {}"}

	p := b.UnitTest(unit, related, nil)

	daoIdx := strings.Index(p, "### DAO")
	validatorIdx := strings.Index(p, "### VALIDATOR")
	require.True(t, daoIdx >= 0 && validatorIdx >= 0)
	assert.Less(t, daoIdx, validatorIdx)
	assert.NotContains(t, p, strings.Repeat("x", 3001))
	assert.Contains(t, p, strings.Repeat("x", 3000))
}

func TestIntegrationTestPromptDropsImplSuffix(t *testing.T) {
	b := promptProject(t)

	unit := &domain.SourceUnit{Name: "OrderServiceImpl", Package: "com.shop", Source: "class OrderServiceImpl {}"}
	p := b.IntegrationTest(unit, nil)

	assert.Contains(t, p, "OrderServiceIntegrationTest")
	assert.Contains(t, p, "@SpringBootTest")
}

func TestRefinementPrompt(t *testing.T) {
	b := promptProject(t)

	p := b.Refinement("class OrderServiceImplTest {}", "add a test for cancel()")
	assert.Contains(t, p, "class OrderServiceImplTest {}")
	assert.Contains(t, p, "add a test for cancel()")
}

func TestRepairPromptCarriesTailOnly(t *testing.T) {
	b := promptProject(t)

	output := strings.Repeat("a", 2500) + "TAIL-MARKER"
	failure := domain.FailureRecord{
		Phase:   domain.PhaseCompile,
		Kind:    domain.FailCompilation,
		Message: "cannot find symbol",
		Line:    42,
	}

	p := b.Repair("class T {}", failure, output)

	assert.Contains(t, p, "TAIL-MARKER")
	assert.NotContains(t, p, strings.Repeat("a", 2100))
	assert.Contains(t, p, "## ERROR LINE: 42")
	assert.Contains(t, p, "cannot find symbol")
	assert.Contains(t, p, string(domain.FailCompilation))
}

func TestRepairPromptUnknownLine(t *testing.T) {
	b := promptProject(t)

	p := b.Repair("class T {}", domain.FailureRecord{Phase: domain.PhaseExecute, Kind: domain.FailNullPointer}, "out")
	assert.Contains(t, p, "## ERROR LINE: Unknown")
}
