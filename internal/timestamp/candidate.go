package timestamp

import (
	"errors"
	"fmt"
	"time"
)

// Source identifies where a candidate timestamp was extracted from.
type Source string

const (
	// SourceSidecar marks candidates read from a companion metadata file.
	SourceSidecar Source = "sidecar"
	// SourceEmbedded marks candidates read from metadata inside the media file.
	SourceEmbedded Source = "embedded"
	// SourceDirectory marks candidates mined from the parent directory name.
	SourceDirectory Source = "directory"
)

// ErrNoCandidate indicates an extractor found no usable timestamp. It is the
// expected fallback signal, not a failure.
var ErrNoCandidate = errors.New("no timestamp candidate")

// MalformedError reports metadata that was present but unparseable. It
// unwraps to ErrNoCandidate so resolution falls through to the next source
// while the reason stays available for debug logging.
type MalformedError struct {
	Source Source
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s metadata: %s: %s", e.Source, e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrNoCandidate
}

// Malformed builds a MalformedError for the given source and field.
func Malformed(source Source, field, reason string) error {
	return &MalformedError{Source: source, Field: field, Reason: reason}
}

// Candidate is a fully-specified, not-yet-applied timestamp proposal. Values
// carry no timezone; callers interpret the fields in a location of their
// choosing. A Candidate is either well-formed or does not exist: New rejects
// anything out of calendar range.
type Candidate struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Source Source
}

// New validates the calendar fields and returns an immutable candidate.
func New(source Source, year, month, day, hour, minute, second int) (Candidate, error) {
	c := Candidate{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
		Source: source,
	}
	if err := c.Validate(); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// FromUnix converts an epoch-second count to calendar fields in the given
// location.
func FromUnix(source Source, epoch int64, loc *time.Location) Candidate {
	if loc == nil {
		loc = time.Local
	}
	t := time.Unix(epoch, 0).In(loc)
	return Candidate{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Source: source,
	}
}

// Validate checks every field against its natural calendar range.
func (c Candidate) Validate() error {
	if c.Source == "" {
		return errors.New("candidate: missing source")
	}
	if c.Year < 1 || c.Year > 9999 {
		return fmt.Errorf("candidate: year %d out of range", c.Year)
	}
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("candidate: month %d out of range", c.Month)
	}
	if c.Day < 1 || c.Day > daysIn(c.Year, c.Month) {
		return fmt.Errorf("candidate: day %d out of range for %04d-%02d", c.Day, c.Year, c.Month)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("candidate: hour %d out of range", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("candidate: minute %d out of range", c.Minute)
	}
	if c.Second < 0 || c.Second > 59 {
		return fmt.Errorf("candidate: second %d out of range", c.Second)
	}
	return nil
}

// Time converts the calendar fields to an absolute instant in the given
// location. The fields are naive wall-clock values; no timezone is ever
// carried by a candidate.
func (c Candidate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, loc)
}

// Unix returns the epoch-second count of the candidate interpreted in loc.
func (c Candidate) Unix(loc *time.Location) int64 {
	return c.Time(loc).Unix()
}

// Stamp renders the canonical six-field numeric layout YYYYMMDDHHMM.SS.
func (c Candidate) Stamp() string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d.%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

func daysIn(year, month int) int {
	switch time.Month(month) {
	case time.January, time.March, time.May, time.July, time.August, time.October, time.December:
		return 31
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if isLeap(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
