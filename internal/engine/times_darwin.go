//go:build darwin

package engine

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// setFileTimes sets mtime on a file by path. Darwin lacks UTIME_OMIT and
// AT_EMPTY_PATH, so atime is set to mtime via path-based utimensat.
func setFileTimes(_ int, fdPath string, modTime time.Time) error {
	ts := unix.NsecToTimespec(modTime.UnixNano())
	times := []unix.Timespec{ts, ts}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, fdPath, times, 0); err != nil {
		return fmt.Errorf("utimensat: %w", err)
	}
	return nil
}
