package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"phototime/internal/timestamp"
)

// DefaultBinary is the exiftool executable name used when none is configured.
const DefaultBinary = "exiftool"

// Extractor queries embedded media metadata through an external exiftool
// binary. Tool absence or failure is treated as "no candidate" so a host
// without exiftool still gets sidecar and directory-name resolution.
type Extractor struct {
	binary  string
	timeout time.Duration
}

// Option adjusts extractor construction.
type Option func(*Extractor)

// WithTimeout caps each exiftool invocation at d. Zero means no cap beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// NewExtractor builds an extractor around the given exiftool binary name.
func NewExtractor(binary string, opts ...Option) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	e := &Extractor{binary: binary}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name reports the candidate source tag for this extractor.
func (e *Extractor) Name() timestamp.Source {
	return timestamp.SourceEmbedded
}

// frame mirrors one element of exiftool's -j output. Only the date fields
// are requested; everything else stays untouched.
type frame struct {
	CreateDate  string `json:"CreateDate"`
	DateCreated string `json:"DateCreated"`
}

// Extract runs exiftool against the file and parses the CreateDate field,
// falling back to DateCreated. Any tool or format problem resolves to
// timestamp.ErrNoCandidate.
func (e *Extractor) Extract(parent context.Context, path string) (timestamp.Candidate, error) {
	ctx := parent
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.binary, "-j", "-CreateDate", "-DateCreated", "--", path)
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := parent.Err(); ctxErr != nil {
			return timestamp.Candidate{}, ctxErr
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return timestamp.Candidate{}, fmt.Errorf("exiftool timed out on %s: %w", filepath.Base(path), timestamp.ErrNoCandidate)
		}
		return timestamp.Candidate{}, fmt.Errorf("exiftool unavailable for %s: %w", filepath.Base(path), timestamp.ErrNoCandidate)
	}

	var frames []frame
	if err := json.Unmarshal(output, &frames); err != nil {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceEmbedded, "json", err.Error())
	}
	if len(frames) == 0 {
		return timestamp.Candidate{}, fmt.Errorf("exiftool returned no frames for %s: %w", filepath.Base(path), timestamp.ErrNoCandidate)
	}

	for _, value := range []string{frames[0].CreateDate, frames[0].DateCreated} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if c, err := ParseDateTime(value); err == nil {
			return c, nil
		}
	}
	return timestamp.Candidate{}, fmt.Errorf("no embedded creation date in %s: %w", filepath.Base(path), timestamp.ErrNoCandidate)
}

// ParseDateTime parses exiftool's colon-delimited datetime layout
// (YYYY:MM:DD HH:MM:SS) positionally. Trailing fractional seconds and
// timezone offsets are ignored.
func ParseDateTime(value string) (timestamp.Candidate, error) {
	value = strings.TrimSpace(value)
	if len(value) < 19 {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceEmbedded, "CreateDate", fmt.Sprintf("value %q too short", value))
	}
	if value[4] != ':' || value[7] != ':' || value[10] != ' ' || value[13] != ':' || value[16] != ':' {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceEmbedded, "CreateDate", fmt.Sprintf("value %q does not match YYYY:MM:DD HH:MM:SS", value))
	}

	fields := make([]int, 6)
	for i, span := range [][2]int{{0, 4}, {5, 7}, {8, 10}, {11, 13}, {14, 16}, {17, 19}} {
		n, err := strconv.Atoi(value[span[0]:span[1]])
		if err != nil {
			return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceEmbedded, "CreateDate", fmt.Sprintf("value %q has non-numeric segment", value))
		}
		fields[i] = n
	}

	c, err := timestamp.New(timestamp.SourceEmbedded, fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceEmbedded, "CreateDate", err.Error())
	}
	return c, nil
}
