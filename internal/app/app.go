// Package app implements the application layer for conveyor.
package app

import (
	"context"
	"fmt"
	"os"

	"go.trai.ch/zerr"

	"github.com/conveyorci/conveyor/internal/adapters/config"
	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"github.com/conveyorci/conveyor/internal/engine/scheduler"
)

// App ties the manifest loader, the action registry, and the scheduler
// together behind the CLI.
type App struct {
	loader ports.ConfigLoader
	runner ports.ActionRunner
	sched  *scheduler.Scheduler
	hasher ports.Hasher
	logger ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	runner ports.ActionRunner,
	sched *scheduler.Scheduler,
	hasher ports.Hasher,
	logger ports.Logger,
) *App {
	return &App{
		loader: loader,
		runner: runner,
		sched:  sched,
		hasher: hasher,
		logger: logger,
	}
}

// RunOptions configures a workflow run triggered from the CLI.
type RunOptions struct {
	// ManifestPath is the workflow manifest to execute.
	ManifestPath string
	// Event is the simulated repository event ("push" or "pull_request").
	Event string
	// Branch is the branch the event refers to.
	Branch string
	// Parallelism caps concurrent jobs. Zero means NumCPU.
	Parallelism int
	// Workspace is the root for per-job workspaces. Empty means a fresh
	// temporary directory.
	Workspace string
	// Source is the project directory checked out into job workspaces.
	Source string
}

// Run loads the manifest, checks its triggers against the given event, and
// executes the workflow. A non-matching trigger returns
// domain.ErrTriggerNotMatched without running anything.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	w, err := a.loader.Load(opts.ManifestPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}
	if err := w.Validate(); err != nil {
		return err
	}

	event := domain.Event(opts.Event)
	if !domain.KnownEvent(event) {
		return zerr.With(zerr.New("unknown event"), "event", opts.Event)
	}
	if !w.Matches(event, opts.Branch) {
		return zerr.With(zerr.With(domain.ErrTriggerNotMatched, "event", opts.Event), "branch", opts.Branch)
	}

	manifestHash, err := a.hasher.HashFile(opts.ManifestPath)
	if err != nil {
		return zerr.Wrap(err, "failed to hash manifest")
	}

	workspace := opts.Workspace
	if workspace == "" {
		workspace, err = os.MkdirTemp("", "conveyor-run-")
		if err != nil {
			return zerr.Wrap(err, "failed to create workspace root")
		}
	}
	source := opts.Source
	if source == "" {
		source = "."
	}

	a.logger.Info(fmt.Sprintf("workflow %q: %d jobs, event %s on %s", w.Name, w.JobCount(), opts.Event, opts.Branch))

	return a.sched.Run(ctx, w, scheduler.Options{
		Parallelism:   opts.Parallelism,
		WorkspaceRoot: workspace,
		SourceDir:     source,
		ManifestHash:  fmt.Sprintf("%016x", manifestHash),
	})
}

// Validate loads the manifest, validates the job graph, and lints what the
// loader cannot enforce structurally. Lint findings are returned, not errors.
func (a *App) Validate(path string) ([]config.Issue, error) {
	w, err := a.loader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return config.Lint(w, a.runner.Resolve), nil
}
