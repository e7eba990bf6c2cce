package util

import (
	"fmt"
	"os"
)

// PermUserWrite is the user-write permission bit (0200).
const PermUserWrite os.FileMode = 0200

// UserWritableDirPerms represents the standard permissions for newly created
// directories (rwxr-xr-x).
const UserWritableDirPerms os.FileMode = 0755

// WithUserWritePermission ensures that any directory/file permission has the
// owner-write bit (0200) set, so a replicated read-only source tree cannot
// lock the replicating user out of the destination on subsequent runs.
func WithUserWritePermission(basePerm os.FileMode) os.FileMode {
	return basePerm | PermUserWrite
}

// InvertMap takes a map[K]V and returns a map[V]K.
// It's a generic helper for creating reverse lookup maps for enums.
func InvertMap[K comparable, V comparable](m map[K]V) map[V]K {
	inv := make(map[V]K, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

// ByteCountIEC formats a byte count using binary (IEC) units.
func ByteCountIEC(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
