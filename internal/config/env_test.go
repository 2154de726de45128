package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	ResetEnv()

	os.Setenv("TESTSMITH_PROJECT", "order-service")
	os.Setenv("TESTSMITH_PROJECT_ROOT", "/work/order-service")
	os.Setenv("TESTSMITH_PROVIDER", "openai")
	os.Setenv("NEO4J_URI", "bolt://testhost:7687")
	defer func() {
		os.Unsetenv("TESTSMITH_PROJECT")
		os.Unsetenv("TESTSMITH_PROJECT_ROOT")
		os.Unsetenv("TESTSMITH_PROVIDER")
		os.Unsetenv("NEO4J_URI")
		ResetEnv()
	}()

	env := Env()

	assert.Equal(t, "order-service", env.Project)
	assert.Equal(t, "/work/order-service", env.ProjectRoot)
	assert.Equal(t, "openai", env.Provider)
	assert.Equal(t, "bolt://testhost:7687", env.Neo4jURI)
}

func TestEnvDefaults(t *testing.T) {
	ResetEnv()

	os.Unsetenv("TESTSMITH_PROJECT_ROOT")
	os.Unsetenv("TESTSMITH_PROVIDER")
	os.Unsetenv("TESTSMITH_MODEL")
	os.Unsetenv("NEO4J_URI")
	defer ResetEnv()

	env := Env()

	assert.Equal(t, ".", env.ProjectRoot)
	assert.Equal(t, "gemini", env.Provider)
	assert.Equal(t, "gemini-2.5-pro", env.Model)
	assert.Equal(t, filepath.Join("src", "main", "java"), env.SourceRoot)
	assert.Equal(t, "bolt://localhost:7687", env.Neo4jURI)
}

func TestGeminiKeyFallback(t *testing.T) {
	ResetEnv()

	os.Unsetenv("GEMINI_API_KEY")
	os.Setenv("GOOGLE_API_KEY", "g-key")
	defer func() {
		os.Unsetenv("GOOGLE_API_KEY")
		ResetEnv()
	}()

	assert.Equal(t, "g-key", Env().GeminiKey)
}

func TestEnvSingleton(t *testing.T) {
	ResetEnv()
	defer ResetEnv()

	first := Env()
	os.Setenv("TESTSMITH_PROJECT", "changed-later")
	defer os.Unsetenv("TESTSMITH_PROJECT")
	second := Env()

	assert.Same(t, first, second)
	assert.Equal(t, first.Project, second.Project)
}

func TestPath(t *testing.T) {
	p := Path("data", "runs.db")
	assert.Contains(t, p, ".testsmith")
	assert.Equal(t, "runs.db", filepath.Base(p))
}
