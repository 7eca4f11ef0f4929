package toolchain_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conveyorci/conveyor/internal/adapters/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installTool lays out a fake store entry: <store>/<name>/<version>/bin
// plus an optional env.json.
func installTool(t *testing.T, store, name, version string, vars map[string]string) string {
	t.Helper()
	dir := filepath.Join(store, name, version)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o750))
	if vars != nil {
		var sb strings.Builder
		sb.WriteString("{")
		first := true
		for k, v := range vars {
			if !first {
				sb.WriteString(",")
			}
			first = false
			sb.WriteString(`"` + k + `":"` + v + `"`)
		}
		sb.WriteString("}")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "env.json"), []byte(sb.String()), 0o600))
	}
	return dir
}

func TestGetEnvironment_PathAndVars(t *testing.T) {
	store := t.TempDir()
	cache := t.TempDir()
	toolDir := installTool(t, store, "rust", "1.74.0", map[string]string{
		"RUSTUP_HOME": "${TOOL_DIR}/rustup",
	})

	f := toolchain.NewFactory(store, cache)
	env, err := f.GetEnvironment(context.Background(), map[string]string{"rust": "rust@1.74.0"})
	require.NoError(t, err)

	assert.Contains(t, env, "PATH="+filepath.Join(toolDir, "bin"))
	assert.Contains(t, env, "RUSTUP_HOME="+filepath.Join(toolDir, "rustup"))
}

func TestGetEnvironment_MultipleTools(t *testing.T) {
	store := t.TempDir()
	cache := t.TempDir()
	rustDir := installTool(t, store, "rust", "1.74.0", nil)
	nodeDir := installTool(t, store, "node", "20.11.0", nil)

	f := toolchain.NewFactory(store, cache)
	env, err := f.GetEnvironment(context.Background(), map[string]string{
		"rust": "rust@1.74.0",
		"node": "node@20.11.0",
	})
	require.NoError(t, err)

	var path string
	for _, entry := range env {
		if after, ok := strings.CutPrefix(entry, "PATH="); ok {
			path = after
		}
	}
	require.NotEmpty(t, path)
	assert.Contains(t, path, filepath.Join(rustDir, "bin"))
	assert.Contains(t, path, filepath.Join(nodeDir, "bin"))
}

func TestGetEnvironment_MissingPin(t *testing.T) {
	store := t.TempDir()
	installTool(t, store, "rust", "1.74.0", nil)

	f := toolchain.NewFactory(store, t.TempDir())
	_, err := f.GetEnvironment(context.Background(), map[string]string{"rust": "rust@1.65.0"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolchain.ErrToolNotInstalled))
}

func TestGetEnvironment_InvalidSpec(t *testing.T) {
	f := toolchain.NewFactory(t.TempDir(), t.TempDir())
	_, err := f.GetEnvironment(context.Background(), map[string]string{"rust": "rust-1.74.0"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolchain.ErrInvalidToolSpec))
}

func TestGetEnvironment_CacheRoundTrip(t *testing.T) {
	store := t.TempDir()
	cache := t.TempDir()
	installTool(t, store, "rust", "1.74.0", nil)

	f := toolchain.NewFactory(store, cache)
	tools := map[string]string{"rust": "rust@1.74.0"}

	first, err := f.GetEnvironment(context.Background(), tools)
	require.NoError(t, err)

	// Remove the store entry; the cached env must still resolve.
	require.NoError(t, os.RemoveAll(filepath.Join(store, "rust")))

	second, err := f.GetEnvironment(context.Background(), tools)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
