package resolve

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"time"

	"phototime/internal/logging"
	"phototime/internal/timestamp"
)

// stampPattern is the canonical six-field numeric layout YYYYMMDDHHMM.SS.
var stampPattern = regexp.MustCompile(`^\d{12}\.\d{2}$`)

// Extractor produces a timestamp candidate for a media file. Implementations
// return timestamp.ErrNoCandidate (possibly via a MalformedError) when no
// usable value exists; any other error is treated the same way.
type Extractor interface {
	Name() timestamp.Source
	Extract(ctx context.Context, path string) (timestamp.Candidate, error)
}

// Resolver runs the extractors in priority order against individual files
// and applies the first resolved timestamp to the filesystem.
type Resolver struct {
	extractors []Extractor
	location   *time.Location
	logger     *slog.Logger
	dryRun     bool
	touch      func(path string, t time.Time) error
}

// Option customizes resolver construction.
type Option func(*Resolver)

// WithDryRun computes decisions without mutating any file.
func WithDryRun(enabled bool) Option {
	return func(r *Resolver) { r.dryRun = enabled }
}

// WithTouchFunc overrides the filesystem mutation, used by tests to inject
// failures.
func WithTouchFunc(fn func(path string, t time.Time) error) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.touch = fn
		}
	}
}

// New builds a resolver over the given extractors. The extractor order is
// the priority order. Candidates are interpreted as wall-clock values in
// loc (time.Local when nil).
func New(logger *slog.Logger, loc *time.Location, extractors []Extractor, opts ...Option) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	r := &Resolver{
		extractors: extractors,
		location:   loc,
		logger:     logging.NewComponentLogger(logger, "resolver"),
		touch: func(path string, t time.Time) error {
			return os.Chtimes(path, t, t)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Location returns the location used to interpret candidate wall-clock
// values.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Lookup runs the extractors in priority order and returns the first
// candidate found, without touching the file. The boolean reports whether
// any source produced a candidate.
func (r *Resolver) Lookup(ctx context.Context, path string) (timestamp.Candidate, bool) {
	for _, extractor := range r.extractors {
		candidate, err := extractor.Extract(ctx, path)
		if err == nil {
			return candidate, true
		}
		var malformed *timestamp.MalformedError
		if errors.As(err, &malformed) {
			r.logger.Debug("source yielded malformed metadata",
				"path", path,
				"source", string(extractor.Name()),
				"reason", malformed.Reason)
			continue
		}
		r.logger.Debug("source yielded no candidate",
			"path", path,
			"source", string(extractor.Name()))
	}
	return timestamp.Candidate{}, false
}

// Resolve determines the best known timestamp for one file and applies it.
// All failures are absorbed into the returned Decision; one file's trouble
// never aborts its siblings.
func (r *Resolver) Resolve(ctx context.Context, path string) Decision {
	decision := Decision{Path: path}

	candidate, found := r.Lookup(ctx, path)
	if !found {
		decision.Action = ActionNoTimestamp
		return decision
	}
	decision.Source = candidate.Source

	info, err := os.Stat(path)
	if err != nil {
		decision.Action = ActionUpdateFailed
		decision.Detail = err.Error()
		return decision
	}
	decision.Prior = info.ModTime()

	resolved := candidate.Time(r.location)
	decision.Resolved = resolved

	if decision.Prior.Unix() == resolved.Unix() {
		decision.Action = ActionIdentical
		return decision
	}

	// Extractors only hand out validated candidates, so a bad stamp here
	// means a programming error upstream. Reject rather than propagate.
	if err := candidate.Validate(); err != nil || !stampPattern.MatchString(candidate.Stamp()) {
		decision.Action = ActionInvalidFormat
		if err != nil {
			decision.Detail = err.Error()
		} else {
			decision.Detail = "stamp " + candidate.Stamp() + " does not match YYYYMMDDHHMM.SS"
		}
		return decision
	}

	if r.dryRun {
		decision.Action = ActionUpdated
		decision.Detail = "dry-run: not applied"
		return decision
	}

	if err := r.touch(path, resolved); err != nil {
		decision.Action = ActionUpdateFailed
		decision.Detail = err.Error()
		return decision
	}

	decision.Action = ActionUpdated
	return decision
}
