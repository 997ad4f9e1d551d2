package code_analyzer

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

func TestResolve_ExactFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/project/src/util.ts": "export {}"})
	resolver := NewPathResolver(fs, nil)

	resolved, ok := resolver.Resolve("/project/src/util.ts")

	require.True(t, ok)
	assert.Equal(t, "/project/src/util.ts", resolved)
}

func TestResolve_ProbesExtensionsInOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/project/mod.ts":  "ts",
		"/project/mod.tsx": "tsx",
	})
	resolver := NewPathResolver(fs, nil)

	resolved, ok := resolver.Resolve("/project/mod")

	require.True(t, ok)
	assert.Equal(t, "/project/mod.ts", resolved)
}

func TestResolve_JsBeatsTs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/project/mod.ts": "ts",
		"/project/mod.js": "js",
	})
	resolver := NewPathResolver(fs, nil)

	resolved, ok := resolver.Resolve("/project/mod")

	require.True(t, ok)
	assert.Equal(t, "/project/mod.js", resolved)
}

func TestResolve_DirectoryIndex(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/project/components/index.tsx": "export {}"})
	resolver := NewPathResolver(fs, nil)

	resolved, ok := resolver.Resolve("/project/components")

	require.True(t, ok)
	assert.Equal(t, "/project/components/index.tsx", resolved)
}

func TestResolve_SiblingFileBeatsDirectoryIndex(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/project/lib.js":       "file",
		"/project/lib/index.js": "index",
	})
	resolver := NewPathResolver(fs, nil)

	resolved, ok := resolver.Resolve("/project/lib")

	require.True(t, ok)
	assert.Equal(t, "/project/lib.js", resolved)
}

func TestResolve_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/project/empty", 0755))
	resolver := NewPathResolver(fs, nil)

	_, ok := resolver.Resolve("/project/missing")
	assert.False(t, ok)

	_, ok = resolver.Resolve("/project/empty")
	assert.False(t, ok)

	_, ok = resolver.Resolve("")
	assert.False(t, ok)
}

func TestResolve_CustomExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/project/mod.mjs": "esm"})

	_, ok := NewPathResolver(fs, nil).Resolve("/project/mod")
	assert.False(t, ok)

	resolved, ok := NewPathResolver(fs, []string{".mjs"}).Resolve("/project/mod")
	require.True(t, ok)
	assert.Equal(t, "/project/mod.mjs", resolved)
}
