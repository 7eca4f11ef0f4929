package ports

import (
	"context"

	"github.com/conveyorci/conveyor/internal/core/domain"
)

// ActionRequest carries the context an action needs to run.
type ActionRequest struct {
	// Step is the manifest step invoking the action.
	Step *domain.Step
	// Job is the job the step belongs to.
	Job *domain.Job
	// WorkDir is the job's isolated workspace directory.
	WorkDir string
	// SourceDir is the directory the checkout action copies from.
	SourceDir string
}

// ActionRunner resolves and executes reusable pinned actions.
//
//go:generate go run go.uber.org/mock/mockgen -source=actions.go -destination=mocks/mock_actions.go -package=mocks
type ActionRunner interface {
	// Resolve verifies that the reference names a known action with a
	// supported pin. It does not execute anything.
	Resolve(ref domain.ActionRef) error

	// Run executes the action and returns environment entries
	// ("KEY=VALUE") to export to the remaining steps of the job.
	Run(ctx context.Context, req ActionRequest) ([]string, error)
}
