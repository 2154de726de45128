package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joss/testsmith/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = domain.TestTarget{Class: "OrderServiceImpl", Package: "de.example.shop.order"}

func TestTestPathMapsPackageToDirectories(t *testing.T) {
	w := New("/project")
	want := filepath.Join("/project", "src/test/java", "de", "example", "shop", "order", "OrderServiceImplTest.java")
	assert.Equal(t, want, w.TestPath(target, false))
}

func TestTestPathIntegrationDropsImpl(t *testing.T) {
	w := New("/project")
	got := w.TestPath(target, true)
	assert.Equal(t, "OrderServiceIntegrationTest.java", filepath.Base(got))
}

func TestWriteCreatesDirectoriesAndCleans(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	code := "```java\npackage de.example.shop.order;\n\npublic class OrderServiceImplTest {\n}\n```"
	path, err := w.Write(target, code, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "```")
	assert.Contains(t, string(content), "public class OrderServiceImplTest")

	assert.True(t, w.TestExists(target, false))
	assert.False(t, w.TestExists(target, true))
}

func TestWriteFailsOnUnwritableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not bind for root")
	}
	root := t.TempDir()
	require.NoError(t, os.Chmod(root, 0o555))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	w := New(root)
	_, err := w.Write(target, "class X {}", false)
	assert.Error(t, err)
}
