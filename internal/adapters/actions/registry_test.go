package actions_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/conveyorci/conveyor/internal/adapters/actions"
	"github.com/conveyorci/conveyor/internal/adapters/fs"
	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolchains records the tools it was asked for and returns a fixed env.
type fakeToolchains struct {
	gotTools map[string]string
	env      []string
	err      error
}

func (f *fakeToolchains) GetEnvironment(_ context.Context, tools map[string]string) ([]string, error) {
	f.gotTools = tools
	return f.env, f.err
}

func newRegistry(toolchains ports.ToolchainFactory) *actions.Registry {
	return actions.NewRegistry(toolchains, fs.NewHasher(fs.NewWalker()))
}

func TestResolve(t *testing.T) {
	r := newRegistry(&fakeToolchains{})

	assert.NoError(t, r.Resolve(domain.ActionRef{Name: "checkout", Pin: "v4"}))
	assert.NoError(t, r.Resolve(domain.ActionRef{Name: "setup", Pin: "v1"}))

	err := r.Resolve(domain.ActionRef{Name: "mystery", Pin: "v9"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	err = r.Resolve(domain.ActionRef{Name: "checkout", Pin: "v1"})
	assert.ErrorIs(t, err, actions.ErrUnsupportedPin)
}

func TestRun_Checkout(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(source, "src"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(source, ".git", "objects"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(source, "Cargo.toml"), []byte("[package]\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(source, "src", "lib.rs"), []byte("pub fn blur() {}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(source, ".git", "objects", "x"), []byte("loose object"), 0o600))

	workDir := t.TempDir()
	r := newRegistry(&fakeToolchains{})

	env, err := r.Run(t.Context(), ports.ActionRequest{
		Step:      &domain.Step{Uses: domain.ActionRef{Name: "checkout", Pin: "v4"}},
		WorkDir:   workDir,
		SourceDir: source,
	})
	require.NoError(t, err)
	assert.Empty(t, env)

	copied, err := os.ReadFile(filepath.Join(workDir, "src", "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, "pub fn blur() {}\n", string(copied))

	_, err = os.Stat(filepath.Join(workDir, ".git"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "version control directory must not be copied")
}

func TestRun_CheckoutWithoutSource(t *testing.T) {
	r := newRegistry(&fakeToolchains{})

	_, err := r.Run(t.Context(), ports.ActionRequest{
		Step:    &domain.Step{Uses: domain.ActionRef{Name: "checkout", Pin: "v4"}},
		WorkDir: t.TempDir(),
	})
	require.Error(t, err)
}

func TestRun_Setup(t *testing.T) {
	toolchains := &fakeToolchains{env: []string{"PATH=/store/rust/1.74.0/bin", "RUSTUP_HOME=/store/rust/1.74.0"}}
	r := newRegistry(toolchains)

	env, err := r.Run(t.Context(), ports.ActionRequest{
		Step: &domain.Step{
			Uses: domain.ActionRef{Name: "setup", Pin: "v1"},
			With: map[string]string{"toolchain": "rust@1.74.0"},
		},
		WorkDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, toolchains.env, env)
	assert.Equal(t, map[string]string{"toolchain": "rust@1.74.0"}, toolchains.gotTools)
}

func TestRun_SetupWithoutTools(t *testing.T) {
	r := newRegistry(&fakeToolchains{})

	_, err := r.Run(t.Context(), ports.ActionRequest{
		Step:    &domain.Step{Uses: domain.ActionRef{Name: "setup", Pin: "v1"}},
		WorkDir: t.TempDir(),
	})
	require.Error(t, err)
}

func TestRun_UnknownAction(t *testing.T) {
	r := newRegistry(&fakeToolchains{})

	_, err := r.Run(t.Context(), ports.ActionRequest{
		Step: &domain.Step{Uses: domain.ActionRef{Name: "deploy", Pin: "v1"}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}
