package ports

import "context"

// ToolchainFactory prepares pinned toolchains for job execution.
//
// Implementations are responsible for:
//   - Resolving tool specifications (e.g., "rust@1.74.0") to installed tools
//   - Constructing environment variables (PATH and tool-specific vars)
//   - Failing when a pinned version is not available, never falling back
//
//go:generate go run go.uber.org/mock/mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type ToolchainFactory interface {
	// GetEnvironment constructs the environment for a set of tools.
	//
	// The tools map contains alias->spec pairs (e.g., "rust" -> "rust@1.74.0").
	// Returns environment variables as "KEY=VALUE" strings suitable for
	// process execution.
	GetEnvironment(ctx context.Context, tools map[string]string) ([]string, error)
}
