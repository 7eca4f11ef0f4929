package scheduler

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/conveyorci/conveyor/internal/adapters/actions"   //nolint:depguard // Wired in engine wiring
	"github.com/conveyorci/conveyor/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"github.com/conveyorci/conveyor/internal/adapters/runstore"  //nolint:depguard // Wired in engine wiring
	"github.com/conveyorci/conveyor/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"github.com/conveyorci/conveyor/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"github.com/conveyorci/conveyor/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			actions.NodeID,
			runstore.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.ActionRunner](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.RunStore](ctx)
			if err != nil {
				return nil, err
			}

			recorder, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(executor, runner, store, recorder, log), nil
		},
	})
}
