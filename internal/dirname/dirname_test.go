package dirname

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"phototime/internal/timestamp"
)

func TestYearFromName(t *testing.T) {
	cases := []struct {
		name     string
		dir      string
		want     int
		wantFind bool
	}{
		{"embedded token", "Trip 2019 Photos", 2019, true},
		{"trailing token", "Vacation2019", 2019, true},
		{"resolution token rejected", "IMG1920x1080", 0, false},
		{"trailing out of range falls back to scan", "2015 backup 1080", 2015, true},
		{"first in-range run wins", "1080 then 2012 then 2019", 2012, true},
		{"five digit run skipped", "batch12019", 0, false},
		{"two digit run skipped", "roll 19", 0, false},
		{"below minimum", "archive 1899", 0, false},
		{"minimum boundary", "archive 1900", 1900, true},
		{"future year rejected", "planning 2099", 0, false},
		{"no digits", "family photos", 0, false},
		{"short name", "ab", 0, false},
		{"digits split by separator", "20-19", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := YearFromName(tc.dir, DefaultMinYear, 2026)
			if ok != tc.wantFind {
				t.Fatalf("YearFromName(%q): found=%v, want %v", tc.dir, ok, tc.wantFind)
			}
			if ok && got != tc.want {
				t.Fatalf("YearFromName(%q): got %d, want %d", tc.dir, got, tc.want)
			}
		})
	}
}

func TestTrailingRulePrecedesScan(t *testing.T) {
	// Both rules match but disagree: the trailing token wins.
	got, ok := YearFromName("best of 2012 shot in 2015", DefaultMinYear, 2026)
	if !ok || got != 2015 {
		t.Fatalf("expected trailing 2015 to win, got %d (found=%v)", got, ok)
	}
}

func TestExtractBuildsJanuaryFirstCandidate(t *testing.T) {
	path := filepath.Join("library", "Trip 2019 Photos", "IMG_0001.jpg")

	c, err := NewExtractor(0).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.Source != timestamp.SourceDirectory {
		t.Fatalf("unexpected source: %s", c.Source)
	}
	want := [6]int{2019, 1, 1, 0, 0, 0}
	got := [6]int{c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second}
	if got != want {
		t.Fatalf("unexpected candidate fields: got %v, want %v", got, want)
	}
}

func TestExtractNoYear(t *testing.T) {
	path := filepath.Join("library", "IMG1920x1080", "clip.mp4")

	_, err := NewExtractor(0).Extract(context.Background(), path)
	if !errors.Is(err, timestamp.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}
