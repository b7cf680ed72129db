package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/drivesync/internal/event"
	"github.com/bamsammich/drivesync/internal/stats"
)

func newTestPlain(verbose bool) (*plainPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := &plainPresenter{
		w:       &out,
		errW:    &errOut,
		stats:   stats.NewCollector(),
		verbose: verbose,
	}
	return p, &out, &errOut
}

func TestPlainFileCopied(t *testing.T) {
	p, out, _ := newTestPlain(false)
	p.handleEvent(event.Event{Type: event.FileCopied, Path: "docs/a.txt", Size: 2048})
	assert.Equal(t, "docs/a.txt  2.0 KiB  0 B/s\n", out.String())
}

func TestPlainFileFailed(t *testing.T) {
	p, out, _ := newTestPlain(false)
	p.handleEvent(event.Event{
		Type:  event.FileFailed,
		Path:  "docs/b.txt",
		Size:  10,
		Error: errors.New("permission denied"),
	})
	assert.Contains(t, out.String(), "docs/b.txt")
	assert.Contains(t, out.String(), "permission denied")
}

func TestPlainFileSkipped(t *testing.T) {
	t.Run("quiet about skips by default", func(t *testing.T) {
		p, out, _ := newTestPlain(false)
		p.handleEvent(event.Event{Type: event.FileSkipped, Path: "docs/c.txt"})
		assert.Empty(t, out.String())
	})

	t.Run("verbose prints skips", func(t *testing.T) {
		p, out, _ := newTestPlain(true)
		p.handleEvent(event.Event{Type: event.FileSkipped, Path: "docs/c.txt"})
		assert.Equal(t, "docs/c.txt  skipped\n", out.String())
	})
}

func TestPlainEstimateComplete(t *testing.T) {
	p, out, errOut := newTestPlain(false)
	p.handleEvent(event.Event{Type: event.EstimateComplete, Total: 1500, TotalSize: 3 << 30})
	assert.Empty(t, out.String())
	assert.Equal(t, "syncing 1,500 files (3.0 GiB)\n", errOut.String())
}

func TestPlainMilestone(t *testing.T) {
	p, out, errOut := newTestPlain(false)
	p.handleEvent(event.Event{Type: event.Milestone, Copied: 200, Skipped: 3000})
	assert.Empty(t, out.String())
	assert.Equal(t, "milestone: 200 copied, 3,000 skipped\n", errOut.String())
}

func TestPlainProgress(t *testing.T) {
	p, _, errOut := newTestPlain(false)
	p.stats.SetTotals(10, 1000)
	p.stats.AddFilesCopied(5)
	p.stats.AddBytesCopied(500)

	p.printProgress()
	line := errOut.String()
	assert.Contains(t, line, "progress: 50%")
	assert.Contains(t, line, "5/10 files")
}

func TestPlainProgressWithoutTotals(t *testing.T) {
	p, _, errOut := newTestPlain(false)
	p.stats.AddFilesCopied(3)
	p.stats.AddBytesCopied(300)

	p.printProgress()
	assert.Equal(t, "progress: 300 B copied 3 files\n", errOut.String())
}

func TestPlainRunDrainsAndReturns(t *testing.T) {
	p, out, _ := newTestPlain(false)

	events := make(chan event.Event, 4)
	events <- event.Event{Type: event.FileCopied, Path: "a", Size: 1}
	events <- event.Event{Type: event.FileCopied, Path: "b", Size: 1}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Contains(t, out.String(), "a  1 B")
	assert.Contains(t, out.String(), "b  1 B")
}

func TestQuietPresenter(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(Config{Writer: &out, ErrWriter: &out, Stats: stats.NewCollector(), Quiet: true})

	events := make(chan event.Event, 2)
	events <- event.Event{Type: event.FileCopied, Path: "a", Size: 1}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Empty(t, out.String())
	assert.Empty(t, p.Summary())
}
