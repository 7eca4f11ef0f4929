package actions

import (
	"context"

	"github.com/conveyorci/conveyor/internal/adapters/fs"
	"github.com/conveyorci/conveyor/internal/adapters/toolchain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the action registry Graft node.
const NodeID graft.ID = "adapter.actions"

func init() {
	graft.Register(graft.Node[ports.ActionRunner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{toolchain.NodeID, fs.HasherNodeID},
		Run: func(ctx context.Context) (ports.ActionRunner, error) {
			toolchains, err := graft.Dep[ports.ToolchainFactory](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(toolchains, hasher), nil
		},
	})
}
