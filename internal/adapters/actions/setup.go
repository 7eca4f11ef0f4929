package actions

import (
	"context"

	"github.com/conveyorci/conveyor/internal/core/ports"
	"go.trai.ch/zerr"
)

// setup resolves the pinned toolchains named in the step's "with" block and
// exports their environment to the remaining steps of the job. Each "with"
// entry is an alias->spec pair, e.g. "toolchain: rust@1.74.0".
func (r *Registry) setup(ctx context.Context, req ports.ActionRequest) ([]string, error) {
	if len(req.Step.With) == 0 {
		return nil, zerr.With(zerr.New("setup requires at least one tool spec"), "step", req.Step.Name.String())
	}

	env, err := r.toolchains.GetEnvironment(ctx, req.Step.With)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to prepare toolchain environment")
	}

	return env, nil
}
