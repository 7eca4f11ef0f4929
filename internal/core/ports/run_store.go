package ports

import "github.com/conveyorci/conveyor/internal/core/domain"

// RunStore defines the interface for persisting job run records.
//
//go:generate go run go.uber.org/mock/mockgen -source=run_store.go -destination=mocks/mock_run_store.go -package=mocks
type RunStore interface {
	// Get retrieves the last run record for a given job name.
	// Returns nil, nil if not found.
	Get(job string) (*domain.RunRecord, error)

	// Put stores the run record.
	Put(record domain.RunRecord) error
}
