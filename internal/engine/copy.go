package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/bamsammich/drivesync/internal/platform"
	"github.com/bamsammich/drivesync/internal/walk"
)

// copyFile copies one source file to its destination path, preserving
// permission bits and mtime so later runs' mtime comparisons stay
// meaningful. Data lands in a uuid-suffixed tmp file first and is renamed
// into place only after metadata is set, so a crashed run never leaves a
// half-written file at the destination path.
func (e *Engine) copyFile(ctx context.Context, rec walk.FileRecord) (int64, error) {
	srcPath := filepath.Join(e.cfg.Src, rec.RelPath)
	dstPath := filepath.Join(e.cfg.Dst, rec.RelPath)
	dir := filepath.Dir(dstPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create parent dir %s: %w", dir, err)
	}

	base := filepath.Base(dstPath)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.drivesync-tmp", base, uuid.New().String()[:8]))
	defer os.Remove(tmpPath) // no-op if rename succeeded

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, rec.Mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}

	var written int64
	if rec.Size > 0 {
		written, err = e.copyData(ctx, srcPath, tmpFd, rec.Size)
		if err != nil {
			tmpFd.Close()
			return 0, fmt.Errorf("copy data %s: %w", srcPath, err)
		}
	}

	// Metadata before rename: the destination must never be visible with
	// the wrong mode or mtime.
	if err := setFileMetadata(tmpFd, rec); err != nil {
		tmpFd.Close()
		return 0, fmt.Errorf("set metadata %s: %w", dstPath, err)
	}

	if err := tmpFd.Close(); err != nil {
		return 0, fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		return 0, fmt.Errorf("rename %s -> %s: %w", tmpPath, dstPath, err)
	}

	return written, nil
}

func (e *Engine) copyData(ctx context.Context, srcPath string, dstFd *os.File, size int64) (int64, error) {
	if e.limiter == nil {
		result, err := platform.CopyFile(platform.CopyFileParams{
			SrcPath: srcPath,
			DstFd:   dstFd,
			SrcSize: size,
		})
		return result.BytesWritten, err
	}

	// Throttled path: plain read/write so the limiter sees every chunk.
	srcFd, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer srcFd.Close()
	return io.Copy(dstFd, newRateLimitedReader(ctx, srcFd, e.limiter))
}

func setFileMetadata(fd *os.File, rec walk.FileRecord) error {
	rawFd := int(fd.Fd())

	if err := unix.Fchmod(rawFd, uint32(rec.Mode.Perm())); err != nil {
		return fmt.Errorf("fchmod: %w", err)
	}

	return setFileTimes(rawFd, fd.Name(), rec.ModTime)
}
