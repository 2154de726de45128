// Package config provides centralized configuration management.
// Eliminates scattered os.Getenv calls across the codebase.
package config

import (
	"os"
	"path/filepath"
	"sync"
)

// TestsmithEnv holds all testsmith environment variables.
type TestsmithEnv struct {
	// Project is the current project name (TESTSMITH_PROJECT)
	Project string

	// ProjectRoot is the Maven project root path (TESTSMITH_PROJECT_ROOT)
	ProjectRoot string

	// SourceRoot overrides the main source root (TESTSMITH_SOURCE_ROOT)
	SourceRoot string

	// Provider selects the LLM provider, gemini or openai (TESTSMITH_PROVIDER)
	Provider string

	// Model is the default LLM model (TESTSMITH_MODEL)
	Model string

	// GeminiKey is the Gemini API key (GEMINI_API_KEY, falls back to GOOGLE_API_KEY)
	GeminiKey string

	// GeminiBaseURL overrides the Gemini API base URL (GEMINI_BASE_URL)
	GeminiBaseURL string

	// OpenAIKey is the OpenAI API key (OPENAI_API_KEY)
	OpenAIKey string

	// OpenAIBaseURL overrides the OpenAI API base URL (OPENAI_BASE_URL)
	OpenAIBaseURL string

	// Neo4jURI is the graph database URI (NEO4J_URI)
	Neo4jURI string

	// Neo4jUser is the graph database user (NEO4J_USER)
	Neo4jUser string

	// Neo4jPassword is the graph database password (NEO4J_PASSWORD)
	Neo4jPassword string
}

var (
	env     *TestsmithEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *TestsmithEnv {
	envOnce.Do(func() {
		env = &TestsmithEnv{
			Project:       os.Getenv("TESTSMITH_PROJECT"),
			ProjectRoot:   getEnvDefault("TESTSMITH_PROJECT_ROOT", "."),
			SourceRoot:    getEnvDefault("TESTSMITH_SOURCE_ROOT", filepath.Join("src", "main", "java")),
			Provider:      getEnvDefault("TESTSMITH_PROVIDER", "gemini"),
			Model:         getEnvDefault("TESTSMITH_MODEL", "gemini-2.5-pro"),
			GeminiKey:     getEnvDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
			GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			Neo4jURI:      getEnvDefault("NEO4J_URI", "bolt://localhost:7687"),
			Neo4jUser:     os.Getenv("NEO4J_USER"),
			Neo4jPassword: os.Getenv("NEO4J_PASSWORD"),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Paths holds standard testsmith directory paths.
type Paths struct {
	// Home is the testsmith home directory (~/.testsmith)
	Home string

	// Data is the data directory (~/.testsmith/data)
	Data string

	// EnvFile is the .env file path (~/.testsmith/.env)
	EnvFile string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		tsHome := filepath.Join(home, ".testsmith")

		paths = &Paths{
			Home:    tsHome,
			Data:    filepath.Join(tsHome, "data"),
			EnvFile: filepath.Join(tsHome, ".env"),
		}
	})
	return paths
}

// Path returns a path under the testsmith home directory.
// Equivalent to filepath.Join(~/.testsmith, parts...)
func Path(parts ...string) string {
	p := GetPaths()
	allParts := append([]string{p.Home}, parts...)
	return filepath.Join(allParts...)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
