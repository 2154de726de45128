// Package writer persists generated test code into the project's test
// source tree. The path mapping is deterministic and reversible:
// package segments become directories, so Maven's -Dtest selector finds
// exactly the class that was written.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/validate"
)

// testSourceRoot is the conventional Maven test source directory.
const testSourceRoot = "src/test/java"

// Writer writes test files under a project checkout.
type Writer struct {
	testDir string
}

// New creates a writer for the given project root.
func New(projectRoot string) *Writer {
	return &Writer{testDir: filepath.Join(projectRoot, testSourceRoot)}
}

// TestPath returns where the test for a target is (or would be) written.
func (w *Writer) TestPath(target domain.TestTarget, integration bool) string {
	pkgPath := strings.ReplaceAll(target.Package, ".", string(os.PathSeparator))
	return filepath.Join(w.testDir, pkgPath, target.TestClass(integration)+".java")
}

// TestExists reports whether a test file for the target already exists.
func (w *Writer) TestExists(target domain.TestTarget, integration bool) bool {
	_, err := os.Stat(w.TestPath(target, integration))
	return err == nil
}

// Write cleans markdown fences from the code and writes it to the
// target's conventional location, creating package directories as
// needed.
func (w *Writer) Write(target domain.TestTarget, code string, integration bool) (string, error) {
	path := w.TestPath(target, integration)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create test dir: %w", err)
	}

	clean := validate.CleanCode(code)
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		return "", fmt.Errorf("write test file: %w", err)
	}
	return path, nil
}
