// Package depgraph builds collaborator dependency graphs from extracted
// structural facts and derives the mock requirements for a target unit.
package depgraph

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Finder resolves a bare class name to candidate source files under a
// project's source root.
type Finder interface {
	// Find returns all candidate paths for a class name, deterministic
	// order. An empty slice means the class is not in the scanned tree.
	Find(className string) []string
}

var genericRe = regexp.MustCompile(`<.*>`)

// GlobFinder locates Java sources via recursive glob under a source root.
type GlobFinder struct {
	Root string
}

// NewGlobFinder creates a finder scoped to the given source root.
func NewGlobFinder(root string) *GlobFinder {
	return &GlobFinder{Root: root}
}

// Find globs for **/<ClassName>.java. Matches are sorted so that
// callers taking the first candidate behave deterministically across
// runs even when a name is ambiguous.
func (f *GlobFinder) Find(className string) []string {
	className = genericRe.ReplaceAllString(className, "")
	if className == "" {
		return nil
	}

	var matches []string
	fsys := os.DirFS(f.Root)
	pattern := "**/" + className + ".java"
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			matches = append(matches, filepath.Join(f.Root, path))
		}
		return nil
	})
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// FindFuzzy globs for **/*<name>*.java, used by the CLI to load classes
// by partial name.
func (f *GlobFinder) FindFuzzy(name string) []string {
	var matches []string
	fsys := os.DirFS(f.Root)
	pattern := "**/*" + name + "*.java"
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			matches = append(matches, filepath.Join(f.Root, path))
		}
		return nil
	})
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}
