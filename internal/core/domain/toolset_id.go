package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// ToolsetID creates a deterministic hash from an alias->spec tool map.
// It keys the cached environment for a pinned toolset, so the same pins
// always resolve to the same cache entry.
func ToolsetID(tools map[string]string) string {
	aliases := make([]string, 0, len(tools))
	for alias := range tools {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)

	var builder strings.Builder
	for _, alias := range aliases {
		builder.WriteString(alias)
		builder.WriteString(":")
		builder.WriteString(tools[alias])
		builder.WriteString(";")
	}

	hash := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(hash[:])
}
