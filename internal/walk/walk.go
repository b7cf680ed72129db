// Package walk provides lazy traversal of a local file tree. Each call to
// Walk starts from scratch; nothing is cached between calls.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileRecord describes one regular file found under a root, keyed by its
// path relative to that root.
type FileRecord struct {
	RelPath string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

const chanBuffer = 64

// Walk traverses root recursively and emits a FileRecord for every regular
// file, including files in hidden directories. Symlinks are resolved; a
// symlink that resolves to a regular file is emitted like one, while broken
// links and unreadable entries become warnings. Both channels close when the
// traversal finishes. The caller must consume both until they close.
func Walk(ctx context.Context, root string) (<-chan FileRecord, <-chan error) {
	w := &walker{
		root:    root,
		records: make(chan FileRecord, chanBuffer),
		warns:   make(chan error, chanBuffer),
	}

	go func() {
		defer close(w.records)
		defer close(w.warns)
		if _, err := os.Stat(root); err != nil {
			w.warn(fmt.Errorf("walk root %s: %w", root, err))
			return
		}
		w.walkDir(ctx, root)
	}()

	return w.records, w.warns
}

type walker struct {
	root    string
	records chan FileRecord
	warns   chan error
}

func (w *walker) walkDir(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.warn(fmt.Errorf("readdir %s: %w", dir, err))
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			w.walkDir(ctx, path)
			continue
		}

		// Stat (not lstat) so symlinks to regular files look like the
		// files they point at. Symlinked directories are not followed;
		// descending through them could loop.
		info, err := os.Stat(path)
		if err != nil {
			w.warn(fmt.Errorf("stat %s: %w", path, err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			w.warn(fmt.Errorf("rel path for %s: %w", path, err))
			continue
		}

		rec := FileRecord{
			RelPath: rel,
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
		}
		select {
		case w.records <- rec:
		case <-ctx.Done():
			return
		}
	}
}

// warn sends an error without blocking; warnings beyond the buffer are dropped.
func (w *walker) warn(err error) {
	select {
	case w.warns <- err:
	default:
	}
}
