package engine

import (
	"fmt"

	"github.com/bamsammich/drivesync/internal/stats"
)

// Sentinel errors for pre-flight validation failures. Both abort the run
// before any traversal.
var (
	ErrNotFound   = fmt.Errorf("path not found")
	ErrPermission = fmt.Errorf("permission denied")
)

// InsufficientSpaceError is returned when the destination's free space is
// smaller than the Pass 1 estimate. The run aborts with nothing copied.
type InsufficientSpaceError struct {
	Needed    uint64
	Available uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient space on destination: need %s, have %s",
		stats.FormatBytes(int64(e.Needed)), stats.FormatBytes(int64(e.Available)))
}

// CopyError records a single file that failed to copy. It never aborts the
// run; the engine collects these into the Report and moves on.
type CopyError struct {
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
