// Package engine implements one-way incremental sync between two locally
// mounted file trees. A run walks the source twice: Pass 1 classifies every
// file and sizes the backup, then after a capacity check against the
// destination's free space, Pass 2 re-walks, re-classifies against live
// destination state, and copies. Nothing is persisted between runs; "already
// backed up" is re-derived from destination metadata every time.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/drivesync/internal/event"
	"github.com/bamsammich/drivesync/internal/stats"
	"github.com/bamsammich/drivesync/internal/walk"
)

// Defaults for milestone intervals and the large-file log threshold.
const (
	DefaultCopyMilestone = 100
	DefaultSkipMilestone = 1000
	DefaultLargeFileSize = 100 << 20 // 100 MiB
)

// Config describes a sync operation.
type Config struct {
	Src string
	Dst string

	// Logger receives warnings and per-file errors. Injected so engine
	// instances never share mutable global handlers; nil discards.
	Logger *slog.Logger

	// Events, if non-nil, receives progress events. The caller must drain
	// the channel; the engine never closes it.
	Events chan<- event.Event

	// Stats, if non-nil, is updated alongside the Report for live display.
	Stats *stats.Collector

	CopyMilestone int64 // emit a Milestone every N copied files
	SkipMilestone int64 // emit a Milestone every M skipped files
	LargeFileSize int64 // log files at or above this size before copying

	DryRun  bool  // classify and size only, copy nothing
	BWLimit int64 // bytes/sec, 0 = unlimited

	// FreeSpace overrides destination free-space probing in tests.
	FreeSpace FreeSpaceFunc
}

// Engine executes sync runs. A single Engine may be reused across runs but
// must not run concurrently against the same destination; there is no
// cross-process locking, so mutual exclusion is the caller's job.
type Engine struct {
	cfg     Config
	log     *slog.Logger
	stats   *stats.Collector
	free    FreeSpaceFunc
	limiter *rate.Limiter
}

// New creates an Engine, filling config defaults.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.CopyMilestone <= 0 {
		cfg.CopyMilestone = DefaultCopyMilestone
	}
	if cfg.SkipMilestone <= 0 {
		cfg.SkipMilestone = DefaultSkipMilestone
	}
	if cfg.LargeFileSize <= 0 {
		cfg.LargeFileSize = DefaultLargeFileSize
	}
	if cfg.FreeSpace == nil {
		cfg.FreeSpace = DiskFree
	}

	e := &Engine{
		cfg:   cfg,
		log:   cfg.Logger,
		stats: cfg.Stats,
		free:  cfg.FreeSpace,
	}
	if cfg.BWLimit > 0 {
		e.limiter = NewBWLimiter(cfg.BWLimit)
	}
	return e
}

// Run executes one sync: validate, classify and size (Pass 1), capacity
// check, then copy (Pass 2). The returned error is non-nil only for fatal
// pre-copy failures (validation, capacity probing); per-file copy failures
// are collected into Report.Errors and clear Report.Succeeded instead.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{}

	e.emit(event.Event{Type: event.RunStarted})
	e.log.Info("starting sync", "source", e.cfg.Src, "destination", e.cfg.Dst)

	if err := Validate(e.cfg.Src, e.cfg.Dst); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	est, err := e.estimate(ctx)
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	report.Planned = est

	e.stats.SetTotals(int64(est.FileCount), int64(est.TotalBytes))
	e.emit(event.Event{
		Type:      event.EstimateComplete,
		Total:     int64(est.FileCount),
		TotalSize: int64(est.TotalBytes),
	})
	e.log.Info("backup sized",
		"files", est.FileCount,
		"bytes", est.TotalBytes,
	)

	available, err := e.free(e.cfg.Dst)
	if err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("probe destination free space: %w", err)
	}
	if err := checkCapacity(est, available); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	if e.cfg.DryRun {
		report.Succeeded = true
		report.Duration = time.Since(start)
		e.emit(event.Event{Type: event.RunComplete})
		return report, nil
	}

	if err := e.copyPass(ctx, &report); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	report.Succeeded = len(report.Errors) == 0
	report.Duration = time.Since(start)
	e.emit(event.Event{
		Type:    event.RunComplete,
		Copied:  report.FilesCopied,
		Skipped: report.FilesSkipped,
	})
	e.log.Info("sync complete",
		"copied", report.FilesCopied,
		"bytes", report.BytesCopied,
		"skipped", report.FilesSkipped,
		"failed", len(report.Errors),
	)
	return report, nil
}

// estimate is Pass 1: walk the source, classify each file against the
// destination, and sum what would be copied. No directories are created and
// nothing is written.
func (e *Engine) estimate(ctx context.Context) (Estimate, error) {
	records, warns := walk.Walk(ctx, e.cfg.Src)
	go e.drainWarnings(warns)

	var est Estimate
	for rec := range records {
		if err := ctx.Err(); err != nil {
			return est, err
		}
		if e.classify(rec) {
			est.TotalBytes += uint64(rec.Size)
			est.FileCount++
		}
	}
	return est, ctx.Err()
}

// copyPass is Pass 2: a fresh walk, re-classifying every file against the
// current destination state since either tree may have changed since Pass 1.
// A single file failure never aborts the pass.
func (e *Engine) copyPass(ctx context.Context, report *Report) error {
	records, warns := walk.Walk(ctx, e.cfg.Src)
	go e.drainWarnings(warns)

	for rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !e.classify(rec) {
			report.FilesSkipped++
			e.stats.AddFilesSkipped(1)
			e.emit(event.Event{Type: event.FileSkipped, Path: rec.RelPath, Size: rec.Size})
			if report.FilesSkipped%e.cfg.SkipMilestone == 0 {
				e.milestone(report)
			}
			continue
		}

		if rec.Size >= e.cfg.LargeFileSize {
			e.log.Info("copying large file", "path", rec.RelPath, "bytes", rec.Size)
		}

		written, err := e.copyFile(ctx, rec)
		if err != nil {
			report.Errors = append(report.Errors, CopyError{Path: rec.RelPath, Err: err})
			e.stats.AddFilesFailed(1)
			e.emit(event.Event{Type: event.FileFailed, Path: rec.RelPath, Size: rec.Size, Error: err})
			e.log.Error("failed to copy file", "path", rec.RelPath, "error", err)
			continue
		}

		report.FilesCopied++
		report.BytesCopied += written
		e.stats.AddFilesCopied(1)
		e.stats.AddBytesCopied(written)
		e.emit(event.Event{Type: event.FileCopied, Path: rec.RelPath, Size: written})
		if report.FilesCopied%e.cfg.CopyMilestone == 0 {
			e.milestone(report)
		}
	}
	return ctx.Err()
}

// classify re-evaluates the change-detection policy against the destination's
// current state. A destination stat failure (other than absence) is treated
// as Copy; the copy itself will surface any real problem.
func (e *Engine) classify(rec walk.FileRecord) bool {
	info, err := os.Stat(filepath.Join(e.cfg.Dst, rec.RelPath))
	if err != nil {
		return NeedsCopy(rec, nil)
	}
	return NeedsCopy(rec, info)
}

func (e *Engine) drainWarnings(warns <-chan error) {
	for err := range warns {
		e.log.Warn("could not stat file", "error", err)
	}
}

func (e *Engine) milestone(report *Report) {
	e.emit(event.Event{
		Type:    event.Milestone,
		Copied:  report.FilesCopied,
		Skipped: report.FilesSkipped,
	})
}

func (e *Engine) emit(ev event.Event) {
	if e.cfg.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	e.cfg.Events <- ev
}
