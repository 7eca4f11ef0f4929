package telemetry

import (
	"context"

	"github.com/conveyorci/conveyor/internal/core/ports"
)

// NoOp is a ports.Telemetry that records nothing. Useful when no terminal is
// attached.
type NoOp struct{}

// NewNoOp creates a NoOp telemetry sink.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a vertex that discards everything.
func (NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (NoOp) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Write(p []byte) (int, error) { return len(p), nil }

func (noopVertex) Done(_ error) {}
