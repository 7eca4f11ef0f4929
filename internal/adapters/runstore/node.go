package runstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conveyorci/conveyor/internal/core/ports"
	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the run store Graft node.
const NodeID graft.ID = "adapter.runstore"

func init() {
	graft.Register(graft.Node[ports.RunStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RunStore, error) {
			base, err := os.UserCacheDir()
			if err != nil {
				base = os.TempDir()
			}
			return NewStore(filepath.Join(base, "conveyor", "runs.json"))
		},
	})
}
