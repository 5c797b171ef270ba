package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"phototime/internal/logging"
	"phototime/internal/report"
	"phototime/internal/resolve"
)

// Recorder receives one decision per processed file.
type Recorder interface {
	Record(ctx context.Context, decision resolve.Decision) error
}

// AggregateStore persists per-directory aggregates. Parents read the
// already-finalized child aggregates through it; the walker never rolls up
// from in-memory child state.
type AggregateStore interface {
	WriteAggregate(dir string, agg report.Aggregate) error
	ReadAggregate(dir string) (report.Aggregate, bool, error)
}

// Walker drives a sequential depth-first traversal of a media library,
// resolving every media file through the resolution policy and persisting
// directory aggregates bottom-up.
type Walker struct {
	resolver *resolve.Resolver
	store    AggregateStore
	recorder Recorder
	logger   *slog.Logger
	exts     ExtensionSet
	dryRun   bool
}

// Option customizes walker construction.
type Option func(*Walker)

// WithRecorder attaches a decision recorder. A nil recorder disables
// decision persistence.
func WithRecorder(recorder Recorder) Option {
	return func(w *Walker) { w.recorder = recorder }
}

// WithExtraExtensions extends the recognized media extensions.
func WithExtraExtensions(extra []string) Option {
	return func(w *Walker) { w.exts = NewExtensionSet(extra...) }
}

// WithDryRun stops the walker from persisting directory aggregates. Child
// counts roll up from the in-memory recursion result instead, so a dry run
// leaves the library untouched.
func WithDryRun(enabled bool) Option {
	return func(w *Walker) { w.dryRun = enabled }
}

// New builds a walker over the given resolver and aggregate store.
func New(logger *slog.Logger, resolver *resolve.Resolver, store AggregateStore, opts ...Option) *Walker {
	w := &Walker{
		resolver: resolver,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "walker"),
		exts:     NewExtensionSet(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk processes the whole tree rooted at root and returns the root
// aggregate. The root must be an existing directory; everything below it is
// handled best-effort.
func (w *Walker) Walk(ctx context.Context, root string) (report.Aggregate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return report.Aggregate{}, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return report.Aggregate{}, fmt.Errorf("root %s is not a directory", root)
	}
	return w.walkDir(ctx, root)
}

// walkDir processes one directory: subdirectories first (post-order), then
// the directory's own media files, then the persisted aggregate. Child
// aggregates are rolled up by reading their already-written report files;
// in dry-run mode nothing is written and the recursion result is used
// instead.
func (w *Walker) walkDir(ctx context.Context, dir string) (report.Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return report.Aggregate{}, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// One unreadable directory must not sink the rest of the tree.
		w.logger.Warn("skipping unreadable directory",
			logging.String(logging.FieldDirectory, dir),
			logging.Error(err))
		return report.Aggregate{}, nil
	}

	var agg report.Aggregate

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		walked, err := w.walkDir(ctx, child)
		if err != nil {
			return agg, err
		}
		if w.dryRun {
			agg.AddChild(walked)
			continue
		}
		childAgg, found, err := w.store.ReadAggregate(child)
		if err != nil {
			w.logger.Warn("unreadable child aggregate",
				logging.String(logging.FieldDirectory, child),
				logging.Error(err))
			continue
		}
		if found {
			agg.AddChild(childAgg)
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || !w.exts.Match(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return agg, err
		}

		path := filepath.Join(dir, entry.Name())
		decision := w.resolver.Resolve(ctx, path)
		agg.DirectFiles++
		if decision.Updated() {
			agg.DirectUpdated++
		}
		w.logDecision(decision)

		if w.recorder != nil {
			if err := w.recorder.Record(ctx, decision); err != nil {
				w.logger.Warn("decision not recorded",
					logging.String(logging.FieldPath, path),
					logging.Error(err))
			}
		}
	}

	agg.SubtreeFiles += agg.DirectFiles
	agg.SubtreeUpdated += agg.DirectUpdated

	if !w.dryRun {
		if err := w.store.WriteAggregate(dir, agg); err != nil {
			w.logger.Warn("aggregate not persisted",
				logging.String(logging.FieldDirectory, dir),
				logging.Error(err))
		}
	}

	return agg, nil
}

func (w *Walker) logDecision(decision resolve.Decision) {
	attrs := []logging.Attr{
		logging.String(logging.FieldPath, decision.Path),
		logging.String(logging.FieldAction, string(decision.Action)),
	}
	if decision.Source != "" {
		attrs = append(attrs, logging.String(logging.FieldSource, string(decision.Source)))
	}
	if decision.Detail != "" {
		attrs = append(attrs, logging.String("detail", decision.Detail))
	}

	switch decision.Action {
	case resolve.ActionUpdated:
		w.logger.Info("timestamp updated", logging.Args(attrs...)...)
	case resolve.ActionUpdateFailed, resolve.ActionInvalidFormat:
		w.logger.Warn("timestamp not applied", logging.Args(attrs...)...)
	default:
		w.logger.Debug("file skipped", logging.Args(attrs...)...)
	}
}
