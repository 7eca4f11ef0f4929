package ports

// Hasher defines the interface for content hashing.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile computes the content hash of a single file.
	HashFile(path string) (uint64, error)

	// HashTree computes a deterministic hash over a directory tree.
	HashTree(root string) (string, error)
}
