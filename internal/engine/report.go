package engine

import (
	"fmt"
	"time"

	"github.com/bamsammich/drivesync/internal/stats"
)

// Report is the outcome of a single run. It is owned by the engine for the
// duration of the run and returned by value; it is never shared between
// concurrent runs.
type Report struct {
	FilesCopied  int64
	BytesCopied  int64
	FilesSkipped int64
	Errors       []CopyError
	Planned      Estimate
	Duration     time.Duration
	Succeeded    bool
}

func (r Report) String() string {
	s := fmt.Sprintf("copied %d files (%s), skipped %d, duration %s",
		r.FilesCopied, stats.FormatBytes(r.BytesCopied), r.FilesSkipped,
		r.Duration.Round(time.Millisecond))
	if len(r.Errors) > 0 {
		s += fmt.Sprintf(", %d failed", len(r.Errors))
	}
	return s
}
