package ports

import (
	"context"

	"github.com/conveyorci/conveyor/internal/core/domain"
)

// Executor defines the interface for executing run steps.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the step's shell command inside workDir.
	//
	// actionEnv contains "KEY=VALUE" entries exported by earlier action
	// steps of the same job (toolchain PATH and friends). jobEnv contains
	// the merged workflow- and job-level variables; step-level variables
	// come from the step itself and win over everything.
	//
	// A non-zero exit is returned as an error carrying the exit code.
	Execute(ctx context.Context, step *domain.Step, workDir string, actionEnv []string, jobEnv map[string]string) error
}
