// Package ports defines the core interfaces for the application.
package ports

import "github.com/conveyorci/conveyor/internal/core/domain"

// ConfigLoader defines the interface for loading a workflow manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the manifest at the given path and returns the workflow.
	Load(path string) (*domain.Workflow, error)
}
