// Package preflight performs advisory checks on the source and destination
// before a replication run starts. Failures here are reported as warnings by
// the caller; they never abort a run on their own.
package preflight

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// SourceSize walks the source tree and returns the total size in bytes of
// all regular files. Unreadable entries are skipped; the estimate is a lower
// bound, which is acceptable for an advisory capacity check.
func SourceSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// FreeBytes returns the number of bytes available to the current user on the
// volume containing path.
func FreeBytes(path string) (uint64, error) {
	return platformFreeBytes(path)
}

// existingAncestor returns path or its nearest existing ancestor. The check
// runs before the destination root is created, so the free-space query has to
// land on a directory that is already there.
func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// CheckCapacity compares the estimated source size against the free space on
// the destination volume. It returns an error describing the shortfall when
// the destination cannot hold the source.
func CheckCapacity(src, dst string) error {
	required := SourceSize(src)
	free, err := FreeBytes(existingAncestor(dst))
	if err != nil {
		return fmt.Errorf("could not determine free space on %s: %w", dst, err)
	}
	if uint64(required) > free {
		return fmt.Errorf("destination volume has %s free, source requires %s",
			util.ByteCountIEC(int64(free)), util.ByteCountIEC(required))
	}
	return nil
}
