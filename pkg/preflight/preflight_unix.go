//go:build !windows

package preflight

import (
	"golang.org/x/sys/unix"
)

func platformFreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	// Bavail is the space available to unprivileged users, which is what a
	// replication run can actually consume.
	return st.Bavail * uint64(st.Bsize), nil
}
