//go:build !linux

package platform

import "os"

// preallocate is a no-op on platforms without fallocate.
func preallocate(_ *os.File, _ int64) {}
