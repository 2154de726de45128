package analyze

import (
	"testing"

	"github.com/joss/testsmith/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCallsCollaborators(t *testing.T) {
	e := NewExtractor()
	unit := e.Parse(orderServiceSource, "/src/OrderServiceImpl.java")

	calls := AnalyzeCalls(unit)
	require.Contains(t, calls, "place")

	assert.Contains(t, calls["place"], domain.CallSite{Receiver: "orderValidator", Method: "checkStock"})
	assert.Contains(t, calls["place"], domain.CallSite{Receiver: "orderDao", Method: "save"})
}

func TestAnalyzeCallsPrivateMethods(t *testing.T) {
	src := `package de.example;

public class InvoiceServiceImpl {
    private final InvoiceDao invoiceDao;

    public void close(Invoice inv) {
        archive(inv);
    }

    private void archive(Invoice inv) {
        invoiceDao.store(inv);
    }
}
`
	e := NewExtractor()
	unit := e.Parse(src, "/src/InvoiceServiceImpl.java")

	calls := AnalyzeCalls(unit)
	require.Contains(t, calls, "close")
	assert.Contains(t, calls["close"], domain.CallSite{Receiver: "this", Method: "archive"})
}

func TestAnalyzeCallsIgnoresOrdinaryLocals(t *testing.T) {
	src := `package de.example;

public class PlainServiceImpl {
    public String shout(String s) {
        return s.toUpperCase() + format(s);
    }
}
`
	e := NewExtractor()
	unit := e.Parse(src, "/src/PlainServiceImpl.java")

	calls := AnalyzeCalls(unit)
	// format is not a declared private method, toUpperCase is a library
	// call: neither should surface.
	assert.Empty(t, calls["shout"])
}

func TestAnalyzeCallsDeduplicates(t *testing.T) {
	src := `package de.example;

public class RetryServiceImpl {
    private final JobDao jobDao;

    public void run(Job j) {
        jobDao.save(j);
        jobDao.save(j);
        jobDao.save(j);
    }
}
`
	e := NewExtractor()
	unit := e.Parse(src, "/src/RetryServiceImpl.java")

	calls := AnalyzeCalls(unit)
	assert.Len(t, calls["run"], 1)
}

func TestAnalyzeCallsEmptyUnit(t *testing.T) {
	calls := AnalyzeCalls(&domain.SourceUnit{Name: "Empty"})
	assert.Empty(t, calls)
}

func TestIsCollaboratorName(t *testing.T) {
	cases := map[string]bool{
		"OrderDao":        true,
		"orderDao":        true,
		"UserService":     true,
		"StockValidator":  true,
		"ProjectMapper":   true,
		"OrderRepository": true,
		"DateHelper":      true,
		"Order":           false,
		"Dao":             false,
		"orderDto":        false,
	}
	for name, want := range cases {
		assert.Equal(t, want, domain.IsCollaboratorName(name), "name %q", name)
	}
}
