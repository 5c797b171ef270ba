package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"phototime/internal/config"
	"phototime/internal/dirname"
	"phototime/internal/exiftool"
	"phototime/internal/logging"
	"phototime/internal/report"
	"phototime/internal/resolve"
	"phototime/internal/scan"
	"phototime/internal/sidecar"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var locationFlag string

	cmd := &cobra.Command{
		Use:   "run <root>",
		Short: "Resolve and apply timestamps across a media library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(locationFlag) != "" {
				cfg.Resolve.Location = strings.TrimSpace(locationFlag)
			}
			return runLibrary(cmd, cfg, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without touching any file")
	cmd.Flags().StringVar(&locationFlag, "location", "", "Timezone for naive timestamps (Local, UTC, or an IANA name)")
	return cmd
}

func runLibrary(cmd *cobra.Command, cfg *config.Config, rootArg string, dryRun bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, err := config.ExpandPath(rootArg)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "phototime.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another phototime run is already in progress (lock %s)", lockPath)
	}
	defer lock.Unlock()

	runID := uuid.NewString()
	runCtx := logging.WithRunID(signalCtx, runID)
	logger = logging.WithContext(runCtx, logger)
	logger.Info("run starting",
		logging.String("root", root),
		logging.Bool("dry_run", dryRun),
		logging.String("location", loc.String()))

	extractors := []resolve.Extractor{sidecar.NewExtractor(loc)}
	if cfg.Exiftool.Enabled {
		extractors = append(extractors, exiftool.NewExtractor(cfg.Exiftool.Binary, exiftool.WithTimeout(cfg.ExiftoolTimeout())))
	}
	extractors = append(extractors, dirname.NewExtractor(cfg.Resolve.MinYear))

	resolver := resolve.New(logger, loc, extractors, resolve.WithDryRun(dryRun))

	walkerOpts := []scan.Option{scan.WithExtraExtensions(cfg.Scan.ExtraExtensions), scan.WithDryRun(dryRun)}
	var store *report.Store
	if cfg.History.Enabled {
		store, err = report.Open(cfg.Paths.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer store.Close()
		if err := store.BeginRun(runCtx, runID, root, dryRun); err != nil {
			return fmt.Errorf("record run start: %w", err)
		}
		walkerOpts = append(walkerOpts, scan.WithRecorder(&historyRecorder{store: store, runID: runID}))
	}

	walker := scan.New(logger, resolver, report.NewFiles(cfg.Scan.ReportFilename, runID), walkerOpts...)
	aggregate, err := walker.Walk(runCtx, root)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.FinishRun(runCtx, runID, aggregate.SubtreeFiles, aggregate.SubtreeUpdated); err != nil {
			logger.Warn("record run finish", logging.Error(err))
		}
		if pruned, err := store.Prune(runCtx, cfg.History.KeepRuns); err != nil {
			logger.Warn("prune run history", logging.Error(err))
		} else if pruned > 0 {
			logger.Debug("pruned run history", logging.Int64("runs", pruned))
		}
	}

	logger.Info("run finished",
		logging.Int("files", aggregate.SubtreeFiles),
		logging.Int("updated", aggregate.SubtreeUpdated))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Root", "Dry Run", "Files", "Updated"},
		[][]string{{
			runID,
			root,
			yesNo(dryRun),
			strconv.Itoa(aggregate.SubtreeFiles),
			strconv.Itoa(aggregate.SubtreeUpdated),
		}},
		3, 4,
	))
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files were modified.")
	}
	return nil
}

// historyRecorder persists per-file decisions into the run-history store.
type historyRecorder struct {
	store *report.Store
	runID string
}

func (r *historyRecorder) Record(ctx context.Context, decision resolve.Decision) error {
	return r.store.RecordDecision(ctx, r.runID, decision)
}
