package ports

import (
	"context"
	"io"
)

// Telemetry records progress of jobs and steps for display.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts recording a named unit of work.
	Record(ctx context.Context, name string) (context.Context, Vertex)

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is one recorded unit of work. Writes stream its output.
type Vertex interface {
	io.Writer
	// Done completes the vertex, recording err if non-nil.
	Done(err error)
}
