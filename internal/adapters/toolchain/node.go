package toolchain

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conveyorci/conveyor/internal/core/ports"
	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the toolchain factory Graft node.
const NodeID graft.ID = "adapter.toolchain"

func init() {
	graft.Register(graft.Node[ports.ToolchainFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ToolchainFactory, error) {
			base, err := os.UserCacheDir()
			if err != nil {
				base = os.TempDir()
			}
			root := filepath.Join(base, "conveyor")
			return NewFactory(filepath.Join(root, "toolchains"), root), nil
		},
	})
}
