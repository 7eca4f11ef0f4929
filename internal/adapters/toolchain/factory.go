// Package toolchain implements ports.ToolchainFactory against a local tool
// store. A tool pinned as "rust@1.74.0" must exist under
// <storeRoot>/rust/1.74.0; a missing pin is an error, never a fallback to
// whatever the host has on PATH.
package toolchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

var (
	// ErrToolNotInstalled is returned when a pinned tool version is absent
	// from the local store.
	ErrToolNotInstalled = zerr.New("pinned tool version not installed")

	// ErrInvalidToolSpec is returned for specs not of the form name@version.
	ErrInvalidToolSpec = zerr.New("invalid tool spec")
)

var _ ports.ToolchainFactory = (*Factory)(nil)

// Factory implements ports.ToolchainFactory using a local tool store.
type Factory struct {
	storeRoot string
	cacheDir  string
}

// NewFactory creates a Factory reading tools from storeRoot and caching
// resolved environments under cacheDir.
func NewFactory(storeRoot, cacheDir string) *Factory {
	return &Factory{
		storeRoot: storeRoot,
		cacheDir:  cacheDir,
	}
}

// GetEnvironment constructs the environment for a set of pinned tools.
// The tools map contains alias->spec pairs (e.g., "rust" -> "rust@1.74.0").
// Returns environment variables as "KEY=VALUE" strings, sorted for
// deterministic output.
func (f *Factory) GetEnvironment(ctx context.Context, tools map[string]string) ([]string, error) {
	envID := domain.ToolsetID(tools)
	cachePath := filepath.Join(f.cacheDir, "environments", envID+".json")
	if cachedEnv, err := loadEnvFromCache(cachePath); err == nil {
		return cachedEnv, nil
	}

	var (
		mu       sync.Mutex
		binDirs  []string
		toolVars []string
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for alias, spec := range tools {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			resolved, err := f.resolve(alias, spec)
			if err != nil {
				return err
			}

			mu.Lock()
			binDirs = append(binDirs, resolved.binDir)
			toolVars = append(toolVars, resolved.vars...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sort before joining so the PATH order does not depend on resolution
	// timing.
	slices.Sort(binDirs)
	env := append([]string{"PATH=" + strings.Join(binDirs, string(os.PathListSeparator))}, toolVars...)
	slices.Sort(env)

	if err := saveEnvToCache(cachePath, env); err != nil {
		// Cache write failures are not fatal; the env is still usable.
		_ = err
	}

	return env, nil
}

type resolvedTool struct {
	binDir string
	vars   []string
}

// resolve locates a pinned tool in the store and collects its exported
// variables. The optional env.json in the version directory holds
// tool-specific vars; "${TOOL_DIR}" in values expands to the version dir.
func (f *Factory) resolve(alias, spec string) (resolvedTool, error) {
	name, version, ok := strings.Cut(spec, "@")
	if !ok || name == "" || version == "" {
		return resolvedTool{}, zerr.With(zerr.With(ErrInvalidToolSpec, "spec", spec), "alias", alias)
	}

	toolDir := filepath.Join(f.storeRoot, name, version)
	info, err := os.Stat(toolDir)
	if err != nil || !info.IsDir() {
		return resolvedTool{}, zerr.With(zerr.With(ErrToolNotInstalled, "spec", spec), "dir", toolDir)
	}

	resolved := resolvedTool{binDir: filepath.Join(toolDir, "bin")}

	varsPath := filepath.Join(toolDir, "env.json")
	data, err := os.ReadFile(varsPath) //nolint:gosec // path rooted in the trusted tool store
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return resolved, nil
		}
		return resolvedTool{}, zerr.Wrap(err, "failed to read tool env file")
	}

	var vars map[string]string
	if err := json.Unmarshal(data, &vars); err != nil {
		return resolvedTool{}, zerr.With(zerr.Wrap(err, "failed to parse tool env file"), "path", varsPath)
	}

	for key, value := range vars {
		expanded := os.Expand(value, func(name string) string {
			if name == "TOOL_DIR" {
				return toolDir
			}
			return ""
		})
		resolved.vars = append(resolved.vars, fmt.Sprintf("%s=%s", key, expanded))
	}

	return resolved, nil
}

// loadEnvFromCache attempts to load a cached environment.
func loadEnvFromCache(path string) ([]string, error) {
	//nolint:gosec // path is constructed from the trusted cache directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, zerr.Wrap(err, "failed to read cache file")
	}

	var env []string
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal cache")
	}

	return env, nil
}

// saveEnvToCache saves an environment to the cache.
func saveEnvToCache(path string, env []string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return zerr.Wrap(err, "failed to create cache directory")
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal environment")
	}

	//nolint:gosec // path is constructed from the trusted cache directory
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return zerr.Wrap(err, "failed to write cache file")
	}

	return nil
}
