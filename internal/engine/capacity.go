package engine

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Estimate sums the files classified Copy during Pass 1. It is computed
// before any copy occurs and is an advisory upper bound, not a transactional
// guarantee; the source tree can change between passes since neither
// filesystem is locked.
type Estimate struct {
	TotalBytes uint64
	FileCount  uint64
}

// FreeSpaceFunc reports the available bytes at a path. Injectable so tests
// can simulate a full destination.
type FreeSpaceFunc func(path string) (uint64, error)

// DiskFree returns the free space available to unprivileged callers on the
// filesystem containing path.
func DiskFree(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// checkCapacity fails closed: a single free-space snapshot is taken before
// the copy pass and never re-checked mid-run.
func checkCapacity(est Estimate, available uint64) error {
	if est.TotalBytes > available {
		return &InsufficientSpaceError{Needed: est.TotalBytes, Available: available}
	}
	return nil
}
