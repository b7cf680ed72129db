package engine

import (
	"io/fs"

	"github.com/bamsammich/drivesync/internal/walk"
)

// NeedsCopy decides whether a source file must be copied to the destination.
// dst is the destination file's metadata, or nil if no file exists at the
// destination path.
//
// The rule, in order: absent destination, newer source mtime, or differing
// size all mean copy; anything else is a skip. This is a heuristic, not an
// equality check: a file with an older-or-equal mtime and the same size is
// assumed unchanged even if its content differs. No byte comparison is done,
// and no attempt is made to correct for clock skew between the two drives.
func NeedsCopy(src walk.FileRecord, dst fs.FileInfo) bool {
	if dst == nil {
		return true
	}
	if src.ModTime.After(dst.ModTime()) {
		return true
	}
	if src.Size != dst.Size() {
		return true
	}
	return false
}
