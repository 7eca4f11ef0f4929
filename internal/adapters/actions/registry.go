// Package actions implements the built-in reusable actions a manifest step
// can invoke via "uses". Every action is pinned; an unsupported pin is
// rejected at resolve time so manifests stay reproducible.
package actions

import (
	"context"
	"slices"

	"github.com/conveyorci/conveyor/internal/core/domain"
	"github.com/conveyorci/conveyor/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrUnsupportedPin is returned when a known action is referenced with a pin
// this build does not ship.
var ErrUnsupportedPin = zerr.New("unsupported action pin")

// supportedPins maps each built-in action to the pins it accepts.
var supportedPins = map[string][]string{
	"checkout": {"v4"},
	"setup":    {"v1"},
}

var _ ports.ActionRunner = (*Registry)(nil)

// Registry implements ports.ActionRunner over the built-in action set.
type Registry struct {
	toolchains ports.ToolchainFactory
	hasher     ports.Hasher
}

// NewRegistry creates a Registry backed by the given toolchain factory and
// content hasher.
func NewRegistry(toolchains ports.ToolchainFactory, hasher ports.Hasher) *Registry {
	return &Registry{
		toolchains: toolchains,
		hasher:     hasher,
	}
}

// Resolve verifies that the reference names a built-in action with a
// supported pin. It does not execute anything.
func (r *Registry) Resolve(ref domain.ActionRef) error {
	pins, ok := supportedPins[ref.Name]
	if !ok {
		return zerr.With(domain.ErrUnknownAction, "action", ref.Name)
	}
	if !slices.Contains(pins, ref.Pin) {
		return zerr.With(zerr.With(ErrUnsupportedPin, "action", ref.Name), "pin", ref.Pin)
	}
	return nil
}

// Run executes the action named by the step's reference and returns
// environment entries to export to the remaining steps of the job.
func (r *Registry) Run(ctx context.Context, req ports.ActionRequest) ([]string, error) {
	if err := r.Resolve(req.Step.Uses); err != nil {
		return nil, err
	}

	switch req.Step.Uses.Name {
	case "checkout":
		return r.checkout(ctx, req)
	case "setup":
		return r.setup(ctx, req)
	default:
		return nil, zerr.With(domain.ErrUnknownAction, "action", req.Step.Uses.Name)
	}
}
