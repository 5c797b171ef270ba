package exiftool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"phototime/internal/timestamp"
)

func TestParseDateTime(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  [6]int
	}{
		{"plain", "2018:05:04 10:20:30", [6]int{2018, 5, 4, 10, 20, 30}},
		{"fractional seconds", "2018:05:04 10:20:30.123", [6]int{2018, 5, 4, 10, 20, 30}},
		{"timezone offset", "2018:05:04 10:20:30+02:00", [6]int{2018, 5, 4, 10, 20, 30}},
		{"surrounding whitespace", "  2018:05:04 10:20:30  ", [6]int{2018, 5, 4, 10, 20, 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseDateTime(tc.value)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.value, err)
			}
			got := [6]int{c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second}
			if got != tc.want {
				t.Fatalf("parse %q: got %v, want %v", tc.value, got, tc.want)
			}
			if c.Source != timestamp.SourceEmbedded {
				t.Fatalf("unexpected source: %s", c.Source)
			}
		})
	}
}

func TestParseDateTimeRejectsBadInput(t *testing.T) {
	for _, value := range []string{
		"",
		"2018-05-04 10:20:30",
		"2018:05:04T10:20:30",
		"2018:13:04 10:20:30",
		"2018:05:32 10:20:30",
		"not a date at all!",
	} {
		if _, err := ParseDateTime(value); !errors.Is(err, timestamp.ErrNoCandidate) {
			t.Fatalf("parse %q: expected ErrNoCandidate, got %v", value, err)
		}
	}
}

// stubExiftool writes a shell script that echoes the given payload and
// prepends its directory to PATH for the duration of the test.
func stubExiftool(t *testing.T, payload string) {
	t.Helper()
	binDir := t.TempDir()
	script := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
	if err := os.WriteFile(filepath.Join(binDir, "exiftool"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub exiftool: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestExtractPrefersCreateDate(t *testing.T) {
	stubExiftool(t, `[{"SourceFile":"x.jpg","CreateDate":"2018:05:04 10:20:30","DateCreated":"2001:01:01 00:00:00"}]`)

	c, err := NewExtractor("").Extract(context.Background(), "x.jpg")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.Year != 2018 {
		t.Fatalf("CreateDate should win, got %+v", c)
	}
}

func TestExtractFallsBackToDateCreated(t *testing.T) {
	stubExiftool(t, `[{"SourceFile":"x.jpg","DateCreated":"2018:05:04 10:20:30"}]`)

	c, err := NewExtractor("").Extract(context.Background(), "x.jpg")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.Year != 2018 || c.Month != 5 || c.Day != 4 {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestExtractNoDateFields(t *testing.T) {
	stubExiftool(t, `[{"SourceFile":"x.jpg"}]`)

	_, err := NewExtractor("").Extract(context.Background(), "x.jpg")
	if !errors.Is(err, timestamp.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}

func TestExtractMissingBinary(t *testing.T) {
	_, err := NewExtractor(filepath.Join(t.TempDir(), "no-such-exiftool")).Extract(context.Background(), "x.jpg")
	if !errors.Is(err, timestamp.ErrNoCandidate) {
		t.Fatalf("missing binary must degrade to ErrNoCandidate, got %v", err)
	}
}
