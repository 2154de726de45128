// Package main provides the testsmith CLI entrypoint.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joss/testsmith/internal/config"
	"github.com/joss/testsmith/internal/depgraph"
	"github.com/joss/testsmith/internal/generate"
	"github.com/joss/testsmith/internal/llm"
	"github.com/joss/testsmith/internal/render"
	"github.com/joss/testsmith/internal/scan"
)

var (
	version     = "0.1.0"
	pretty      = true
	projectFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "testsmith",
		Short: "LLM-assisted unit test generator for Java Spring Boot projects",
		Long: `testsmith analyzes Java sources, derives which collaborators a test
must mock, asks an LLM to write the test, and validates the result
through Maven with automatic repair rounds.

Use 'testsmith status' to check the environment.
Use 'testsmith generate <Class> --validate --save' for the full pipeline.`,
		Version: version,
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Maven project root (default $TESTSMITH_PROJECT_ROOT or .)")

	rootCmd.AddCommand(
		analyzeCmd(),
		depsCmd(),
		mocksCmd(),
		generateCmd(),
		validateCmd(),
		graphCmd(),
		historyCmd(),
		statusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// projectRoot resolves the Maven project directory.
func projectRoot() string {
	if projectFlag != "" {
		return projectFlag
	}
	return config.Env().ProjectRoot
}

// sourceRoot resolves the main source tree under the project.
func sourceRoot() string {
	return filepath.Join(projectRoot(), config.Env().SourceRoot)
}

func newFinder() *depgraph.GlobFinder {
	return depgraph.NewGlobFinder(sourceRoot())
}

func newRenderer() *render.Renderer {
	return render.New(pretty)
}

// newService wires the full generation pipeline. Requires a provider
// API key; analysis-only commands avoid this path.
func newService() (*generate.Service, error) {
	client, err := llm.NewFromEnv(config.Env())
	if err != nil {
		return nil, err
	}
	gatherer := scan.NewGatherer(projectRoot(), nil)
	return generate.New(newFinder(), gatherer, client), nil
}

// resolveClass finds the source path for a class, fuzzily if needed.
func resolveClass(name string) (string, error) {
	finder := newFinder()
	if paths := finder.Find(name); len(paths) > 0 {
		return paths[0], nil
	}
	if paths := finder.FindFuzzy(name); len(paths) > 0 {
		return paths[0], nil
	}
	return "", fmt.Errorf("class %s not found under %s", name, sourceRoot())
}

// exitOnError prints the error and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
