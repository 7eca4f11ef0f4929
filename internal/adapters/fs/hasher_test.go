package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conveyorci/conveyor/internal/adapters/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	writeFile(t, dir, "b.txt", "hello")
	writeFile(t, dir, "c.txt", "world")

	h := fs.NewHasher(fs.NewWalker())

	a, err := h.HashFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	b, err := h.HashFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	c, err := h.HashFile(filepath.Join(dir, "c.txt"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestHashFile_Missing(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	_, err := h.HashFile(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestHashTree_LocationIndependent(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())

	first := t.TempDir()
	writeFile(t, first, "src/lib.rs", "fn main() {}")
	writeFile(t, first, "Cargo.toml", "[package]")

	second := t.TempDir()
	writeFile(t, second, "src/lib.rs", "fn main() {}")
	writeFile(t, second, "Cargo.toml", "[package]")

	a, err := h.HashTree(first)
	require.NoError(t, err)
	b, err := h.HashTree(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashTree_DetectsRenameAndEdit(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())

	dir := t.TempDir()
	writeFile(t, dir, "Cargo.lock", "v1")
	base, err := h.HashTree(dir)
	require.NoError(t, err)

	// Edit
	writeFile(t, dir, "Cargo.lock", "v2")
	edited, err := h.HashTree(dir)
	require.NoError(t, err)
	assert.NotEqual(t, base, edited)

	// Rename back to original content under a new name
	require.NoError(t, os.Remove(filepath.Join(dir, "Cargo.lock")))
	writeFile(t, dir, "Cargo.lock.msrv", "v1")
	renamed, err := h.HashTree(dir)
	require.NoError(t, err)
	assert.NotEqual(t, base, renamed)
}

func TestHashTree_SkipsGitDir(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())

	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main")
	base, err := h.HashTree(dir)
	require.NoError(t, err)

	writeFile(t, dir, ".git/objects/blob", "junk")
	withGit, err := h.HashTree(dir)
	require.NoError(t, err)
	assert.Equal(t, base, withGit)
}
