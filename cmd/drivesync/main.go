package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/drivesync/internal/config"
	"github.com/bamsammich/drivesync/internal/engine"
	"github.com/bamsammich/drivesync/internal/event"
	"github.com/bamsammich/drivesync/internal/sched"
	"github.com/bamsammich/drivesync/internal/stats"
	"github.com/bamsammich/drivesync/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and mode selection
func run() int {
	var (
		runNow        bool
		atStr         string
		logFile       string
		quiet         bool
		verbose       bool
		dryRun        bool
		bwLimitStr    string
		copyMilestone int64
		skipMilestone int64
		showVersion   bool
	)

	rootCmd := &cobra.Command{
		Use:   "drivesync [flags] <source> <destination>",
		Short: "Incremental one-way sync between locally mounted drives",
		Long: `drivesync copies new and changed files from a source drive to a
destination drive. Files already present at the destination with the same
size and an mtime at least as new are skipped; nothing is ever deleted from
the destination. Before copying, the total backup size is computed and
checked against the destination's free space.

By default drivesync runs as a daemon that syncs once per day at the time
given by --at. Use --run-now for a single immediate sync.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "drivesync %s\n", version)
				return nil
			}

			src, dst := args[0], args[1]

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &atStr, &bwLimitStr, &copyMilestone, &skipMilestone, &quiet)

			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = config.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			// Configure logging: text on stderr, optional JSON tee to a file.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)

			if dryRun {
				logger.Info("dry run mode")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine that
			// writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.Int64("size", ev.Size),
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						logger.LogAttrs(context.Background(), slog.LevelInfo, "drivesync.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			presenter := ui.NewPresenter(ui.Config{
				Writer:    os.Stdout,
				ErrWriter: os.Stderr,
				Stats:     collector,
				SrcRoot:   src,
				DstRoot:   dst,
				IsTTY:     ui.IsTTY(os.Stderr.Fd()),
				Quiet:     quiet,
				Verbose:   verbose,
			})

			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				if err := presenter.Run(presenterEvents); err != nil {
					fmt.Fprintf(os.Stderr, "presenter: %v\n", err)
				}
			}()

			eng := engine.New(engine.Config{
				Src:           src,
				Dst:           dst,
				Logger:        logger,
				Events:        events,
				Stats:         collector,
				CopyMilestone: copyMilestone,
				SkipMilestone: skipMilestone,
				DryRun:        dryRun,
				BWLimit:       bwLimit,
			})

			finish := func() {
				stop()
				close(events)
				presenterWg.Wait()
				if !quiet {
					if summary := presenter.Summary(); summary != "" {
						fmt.Fprintln(os.Stderr, summary)
					}
				}
			}

			if runNow {
				report, runErr := eng.Run(ctx)
				finish()
				return exitFor(report, runErr, dryRun, logger)
			}

			at, parseErr := sched.ParseTimeOfDay(atStr)
			if parseErr != nil {
				finish()
				return parseErr
			}

			scheduler := sched.New(sched.Config{
				At:     at,
				Logger: logger,
				Job: func(ctx context.Context) error {
					report, runErr := eng.Run(ctx)
					if runErr != nil {
						return runErr
					}
					if !report.Succeeded {
						return fmt.Errorf("sync finished with %d failed files", len(report.Errors))
					}
					logger.Info("scheduled sync report", "report", report.String())
					return nil
				},
			})

			logger.Info("daily sync scheduled",
				"at", at.String(),
				"source", src,
				"destination", dst,
			)

			schedErr := scheduler.Run(ctx)
			finish()
			if errors.Is(schedErr, context.Canceled) {
				return nil
			}
			return schedErr
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().BoolVar(&runNow, "run-now", false, "run a single sync immediately instead of scheduling")
	rootCmd.Flags().StringVar(&atStr, "at", "02:00", "daily sync time (HH:MM, 24-hour)")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify and size the backup without copying")
	rootCmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().Int64Var(&copyMilestone, "copy-milestone", engine.DefaultCopyMilestone,
		"emit a progress milestone every N copied files")
	rootCmd.Flags().Int64Var(&skipMilestone, "skip-milestone", engine.DefaultSkipMilestone,
		"emit a progress milestone every N skipped files")

	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// exitFor maps a one-shot run outcome to the exit status contract:
// 0 on success, 1 on partial failure (some files copied), 2 on total failure.
func exitFor(report engine.Report, runErr error, dryRun bool, logger *slog.Logger) error {
	if runErr != nil {
		logger.Error("sync failed", "error", runErr)
		return &exitError{code: 2}
	}
	if dryRun {
		fmt.Fprintf(os.Stderr, "would copy %d files (%s)\n",
			report.Planned.FileCount, stats.FormatBytes(int64(report.Planned.TotalBytes)))
		return nil
	}
	if report.Succeeded {
		return nil
	}
	if report.FilesCopied > 0 {
		return &exitError{code: 1}
	}
	return &exitError{code: 2}
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	at *string,
	bwLimit *string,
	copyMilestone *int64,
	skipMilestone *int64,
	quiet *bool,
) {
	if !cmd.Flags().Changed("at") && defaults.At != nil {
		*at = *defaults.At
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("copy-milestone") && defaults.CopyMilestone != nil {
		*copyMilestone = *defaults.CopyMilestone
	}
	if !cmd.Flags().Changed("skip-milestone") && defaults.SkipMilestone != nil {
		*skipMilestone = *defaults.SkipMilestone
	}
	if !cmd.Flags().Changed("quiet") && defaults.Quiet != nil {
		*quiet = *defaults.Quiet
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
