package selftest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeGraph struct {
	pingErr error
}

func (f *fakeGraph) Ping(context.Context) error { return f.pingErr }
func (f *fakeGraph) Close() error               { return nil }

func TestCheckGraphUp(t *testing.T) {
	orig := connectGraph
	defer func() { connectGraph = orig }()
	connectGraph = func() (pinger, error) { return &fakeGraph{}, nil }

	env := &Environment{}
	env.checkGraph()
	assert.True(t, env.GraphUp)
	assert.Empty(t, env.Warnings)
}

func TestCheckGraphDown(t *testing.T) {
	orig := connectGraph
	defer func() { connectGraph = orig }()
	connectGraph = func() (pinger, error) { return nil, errors.New("refused") }

	env := &Environment{}
	env.checkGraph()
	assert.False(t, env.GraphUp)
	assert.Len(t, env.Warnings, 1)
}

func TestIsHealthy(t *testing.T) {
	env := &Environment{Warnings: []string{"graph database unavailable"}}
	assert.True(t, env.IsHealthy())

	env.Errors = append(env.Errors, "mvn not found on PATH")
	assert.False(t, env.IsHealthy())
}

func TestSummary(t *testing.T) {
	env := &Environment{
		MavenVersion:  "Apache Maven 3.9.6",
		HasAPIKey:     true,
		Provider:      "gemini",
		ProjectRoot:   "/work/shop",
		HasPom:        true,
		SourceRootOK:  true,
		StoreWritable: true,
		Warnings:      []string{"graph database unavailable (export disabled)"},
	}

	summary := env.Summary()
	assert.True(t, strings.HasPrefix(summary, "TESTSMITH ENVIRONMENT CHECK"))
	assert.Contains(t, summary, "Apache Maven 3.9.6")
	assert.Contains(t, summary, "provider: gemini (API key present)")
	assert.Contains(t, summary, "! graph database unavailable")
	assert.Contains(t, summary, "no TTY detected")
}

func TestSummaryErrors(t *testing.T) {
	env := &Environment{Errors: []string{"mvn not found on PATH"}}
	assert.Contains(t, env.Summary(), "✗ mvn not found on PATH")
}
