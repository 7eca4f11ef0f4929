package actions

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conveyorci/conveyor/internal/core/ports"
	"go.trai.ch/zerr"
)

const checkoutDirPerm = 0o750

// skippedDirs are version control directories that never belong in a job
// workspace.
var skippedDirs = map[string]bool{
	".git": true,
	".jj":  true,
}

// checkout copies the project source into the job workspace and verifies the
// copy against the source tree hash.
func (r *Registry) checkout(ctx context.Context, req ports.ActionRequest) ([]string, error) {
	if req.SourceDir == "" {
		return nil, zerr.New("checkout requires a source directory")
	}

	if err := copyTree(ctx, req.SourceDir, req.WorkDir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "checkout failed"), "source", req.SourceDir)
	}

	srcHash, err := r.hasher.HashTree(req.SourceDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to hash source tree")
	}
	dstHash, err := r.hasher.HashTree(req.WorkDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to hash workspace tree")
	}
	if srcHash != dstHash {
		return nil, zerr.With(zerr.With(zerr.New("checkout copy does not match source"), "source_hash", srcHash), "copy_hash", dstHash)
	}

	return nil, nil
}

// copyTree mirrors src into dst, pruning version control directories and
// preserving file modes.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if rel != "." && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), checkoutDirPerm)
		}

		return copyFile(path, filepath.Join(dst, rel))
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src) //nolint:gosec // path enumerated from the source tree
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only handle

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // path rooted in the job workspace
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
