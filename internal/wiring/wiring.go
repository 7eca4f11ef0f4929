// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/conveyorci/conveyor/internal/adapters/actions"
	_ "github.com/conveyorci/conveyor/internal/adapters/config"
	_ "github.com/conveyorci/conveyor/internal/adapters/fs"
	_ "github.com/conveyorci/conveyor/internal/adapters/logger"
	_ "github.com/conveyorci/conveyor/internal/adapters/runstore"
	_ "github.com/conveyorci/conveyor/internal/adapters/shell"
	_ "github.com/conveyorci/conveyor/internal/adapters/telemetry"
	_ "github.com/conveyorci/conveyor/internal/adapters/toolchain"
	// Register app and engine nodes.
	_ "github.com/conveyorci/conveyor/internal/app"
	_ "github.com/conveyorci/conveyor/internal/engine/scheduler"
)
