package dirname

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"phototime/internal/timestamp"
)

// DefaultMinYear is the lowest directory-name token accepted as a year.
// Anything below it (resolution tokens like "1080", counters, dates without
// centuries) is noise.
const DefaultMinYear = 1900

// Extractor mines a plausible year out of a file's parent directory name.
// It is the weakest signal and is only consulted when sidecar and embedded
// metadata both fail.
type Extractor struct {
	minYear int
}

// NewExtractor builds a directory-name extractor. minYear values below 1
// fall back to DefaultMinYear.
func NewExtractor(minYear int) *Extractor {
	if minYear < 1 {
		minYear = DefaultMinYear
	}
	return &Extractor{minYear: minYear}
}

// Name reports the candidate source tag for this extractor.
func (e *Extractor) Name() timestamp.Source {
	return timestamp.SourceDirectory
}

// Extract produces a January 1, 00:00:00 candidate for the year mined from
// the parent directory name, or timestamp.ErrNoCandidate when no plausible
// year token exists.
func (e *Extractor) Extract(ctx context.Context, path string) (timestamp.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return timestamp.Candidate{}, err
	}

	name := filepath.Base(filepath.Dir(path))
	year, ok := YearFromName(name, e.minYear, time.Now().Year())
	if !ok {
		return timestamp.Candidate{}, fmt.Errorf("no year token in directory %q: %w", name, timestamp.ErrNoCandidate)
	}
	return timestamp.New(timestamp.SourceDirectory, year, 1, 1, 0, 0, 0)
}

// YearFromName applies the two-step heuristic to a directory name. The
// trailing-characters rule strictly precedes the scan rule: when the last
// four characters form a digit token, the scan is consulted only if that
// token falls outside [minYear, maxYear].
//
// The scan considers maximal runs of consecutive digits and accepts only
// runs of exactly four digits, left to right, first in-range run wins.
// Longer runs ("12019") and shorter runs ("19") never qualify.
func YearFromName(name string, minYear, maxYear int) (int, bool) {
	if year, ok := trailingYear(name, minYear, maxYear); ok {
		return year, true
	}
	return scannedYear(name, minYear, maxYear)
}

func trailingYear(name string, minYear, maxYear int) (int, bool) {
	runes := []rune(name)
	if len(runes) < 4 {
		return 0, false
	}
	tail := runes[len(runes)-4:]
	year := 0
	for _, r := range tail {
		if r < '0' || r > '9' {
			return 0, false
		}
		year = year*10 + int(r-'0')
	}
	if year < minYear || year > maxYear {
		return 0, false
	}
	return year, true
}

func scannedYear(name string, minYear, maxYear int) (int, bool) {
	runLen := 0
	value := 0
	flush := func() (int, bool) {
		if runLen == 4 && value >= minYear && value <= maxYear {
			return value, true
		}
		return 0, false
	}

	for _, r := range name {
		if r >= '0' && r <= '9' {
			runLen++
			if runLen <= 4 {
				value = value*10 + int(r-'0')
			}
			continue
		}
		if year, ok := flush(); ok {
			return year, true
		}
		runLen = 0
		value = 0
	}
	return flush()
}
