package engine

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Validate checks that both roots exist, the source is readable, and the
// destination is writable. All checks run; failures are joined so a single
// call surfaces every violated precondition. A non-nil result means the run
// must abort before any traversal.
func Validate(src, dst string) error {
	var errs []error

	srcOK := true
	if _, err := os.Stat(src); err != nil {
		srcOK = false
		if errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("source drive %s: %w", src, ErrNotFound))
		} else {
			errs = append(errs, fmt.Errorf("source drive %s: %w", src, err))
		}
	}

	dstOK := true
	if _, err := os.Stat(dst); err != nil {
		dstOK = false
		if errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("destination drive %s: %w", dst, ErrNotFound))
		} else {
			errs = append(errs, fmt.Errorf("destination drive %s: %w", dst, err))
		}
	}

	if srcOK {
		if err := unix.Access(src, unix.R_OK); err != nil {
			errs = append(errs, fmt.Errorf("cannot read from source %s: %w", src, ErrPermission))
		}
	}
	if dstOK {
		if err := unix.Access(dst, unix.W_OK); err != nil {
			errs = append(errs, fmt.Errorf("cannot write to destination %s: %w", dst, ErrPermission))
		}
	}

	return errors.Join(errs...)
}
