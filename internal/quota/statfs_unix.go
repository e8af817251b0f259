//go:build linux || darwin

package quota

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statfsFree returns the bytes available to unprivileged users under dir.
func statfsFree(dir string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", dir, err)
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}
