package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"phototime/internal/timestamp"
)

type stubExtractor struct {
	source    timestamp.Source
	candidate timestamp.Candidate
	err       error
}

func (s stubExtractor) Name() timestamp.Source { return s.source }

func (s stubExtractor) Extract(context.Context, string) (timestamp.Candidate, error) {
	return s.candidate, s.err
}

func foundExtractor(t *testing.T, source timestamp.Source, fields [6]int) stubExtractor {
	t.Helper()
	c, err := timestamp.New(source, fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		t.Fatalf("build candidate: %v", err)
	}
	return stubExtractor{source: source, candidate: c}
}

func notFoundExtractor(source timestamp.Source) stubExtractor {
	return stubExtractor{source: source, err: timestamp.ErrNoCandidate}
}

func mediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	// Timestamp far in the past so resolution always has work to do.
	old := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("age media file: %v", err)
	}
	return path
}

func TestResolveUpdatesThenIdentical(t *testing.T) {
	path := mediaFile(t)
	resolver := New(nil, time.UTC, []Extractor{
		foundExtractor(t, timestamp.SourceSidecar, [6]int{2021, 1, 1, 0, 0, 0}),
	})

	first := resolver.Resolve(context.Background(), path)
	if first.Action != ActionUpdated {
		t.Fatalf("first pass: got %s, want %s (detail=%s)", first.Action, ActionUpdated, first.Detail)
	}
	if first.Source != timestamp.SourceSidecar {
		t.Fatalf("unexpected source: %s", first.Source)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	want := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	if info.ModTime().Unix() != want.Unix() {
		t.Fatalf("mtime not applied: got %v, want %v", info.ModTime(), want)
	}

	second := resolver.Resolve(context.Background(), path)
	if second.Action != ActionIdentical {
		t.Fatalf("second pass: got %s, want %s", second.Action, ActionIdentical)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(info.ModTime()) {
		t.Fatal("identical pass must not re-touch the file")
	}
}

func TestResolvePriorityOrder(t *testing.T) {
	path := mediaFile(t)
	// Sidecar has the earlier value; priority, not recency, must decide.
	resolver := New(nil, time.UTC, []Extractor{
		foundExtractor(t, timestamp.SourceSidecar, [6]int{2001, 9, 9, 1, 46, 40}),
		foundExtractor(t, timestamp.SourceEmbedded, [6]int{2018, 5, 4, 10, 20, 30}),
	})

	decision := resolver.Resolve(context.Background(), path)
	if decision.Source != timestamp.SourceSidecar {
		t.Fatalf("sidecar must win: got %s", decision.Source)
	}
	if decision.Resolved.Year() != 2001 {
		t.Fatalf("unexpected resolved year: %d", decision.Resolved.Year())
	}
}

func TestResolveFallsThroughToLaterSource(t *testing.T) {
	path := mediaFile(t)
	resolver := New(nil, time.UTC, []Extractor{
		notFoundExtractor(timestamp.SourceSidecar),
		notFoundExtractor(timestamp.SourceEmbedded),
		foundExtractor(t, timestamp.SourceDirectory, [6]int{2019, 1, 1, 0, 0, 0}),
	})

	decision := resolver.Resolve(context.Background(), path)
	if decision.Action != ActionUpdated {
		t.Fatalf("got %s, want %s", decision.Action, ActionUpdated)
	}
	if decision.Source != timestamp.SourceDirectory {
		t.Fatalf("unexpected source: %s", decision.Source)
	}
}

func TestResolveNoTimestamp(t *testing.T) {
	path := mediaFile(t)
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	resolver := New(nil, time.UTC, []Extractor{
		notFoundExtractor(timestamp.SourceSidecar),
		notFoundExtractor(timestamp.SourceEmbedded),
		notFoundExtractor(timestamp.SourceDirectory),
	})

	decision := resolver.Resolve(context.Background(), path)
	if decision.Action != ActionNoTimestamp {
		t.Fatalf("got %s, want %s", decision.Action, ActionNoTimestamp)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("file must stay untouched when no source resolves")
	}
}

func TestResolveRejectsMalformedCandidate(t *testing.T) {
	path := mediaFile(t)
	// Bypasses the validating constructor to exercise the defensive check.
	bad := timestamp.Candidate{Year: 2018, Month: 13, Day: 1, Source: timestamp.SourceSidecar}
	resolver := New(nil, time.UTC, []Extractor{
		stubExtractor{source: timestamp.SourceSidecar, candidate: bad},
	})

	decision := resolver.Resolve(context.Background(), path)
	if decision.Action != ActionInvalidFormat {
		t.Fatalf("got %s, want %s", decision.Action, ActionInvalidFormat)
	}
}

func TestResolveUpdateFailure(t *testing.T) {
	path := mediaFile(t)
	resolver := New(nil, time.UTC, []Extractor{
		foundExtractor(t, timestamp.SourceSidecar, [6]int{2021, 1, 1, 0, 0, 0}),
	}, WithTouchFunc(func(string, time.Time) error {
		return errors.New("read-only filesystem")
	}))

	decision := resolver.Resolve(context.Background(), path)
	if decision.Action != ActionUpdateFailed {
		t.Fatalf("got %s, want %s", decision.Action, ActionUpdateFailed)
	}
	if decision.Detail == "" {
		t.Fatal("update failure should carry a detail message")
	}
}

func TestResolveDryRun(t *testing.T) {
	path := mediaFile(t)
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	resolver := New(nil, time.UTC, []Extractor{
		foundExtractor(t, timestamp.SourceSidecar, [6]int{2021, 1, 1, 0, 0, 0}),
	}, WithDryRun(true))

	decision := resolver.Resolve(context.Background(), path)
	if decision.Action != ActionUpdated {
		t.Fatalf("dry-run should still report %s, got %s", ActionUpdated, decision.Action)
	}
	if decision.Detail == "" {
		t.Fatal("dry-run decision should say it was not applied")
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("dry-run must not mutate the file")
	}
}

func TestResolveMissingFile(t *testing.T) {
	resolver := New(nil, time.UTC, []Extractor{
		foundExtractor(t, timestamp.SourceSidecar, [6]int{2021, 1, 1, 0, 0, 0}),
	})

	decision := resolver.Resolve(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"))
	if decision.Action != ActionUpdateFailed {
		t.Fatalf("got %s, want %s", decision.Action, ActionUpdateFailed)
	}
}

func TestResolveInterpretsCandidateInLocation(t *testing.T) {
	path := mediaFile(t)
	loc := time.FixedZone("plus2", 2*3600)
	resolver := New(nil, loc, []Extractor{
		foundExtractor(t, timestamp.SourceSidecar, [6]int{2021, 1, 1, 12, 0, 0}),
	})

	decision := resolver.Resolve(context.Background(), path)
	if decision.Action != ActionUpdated {
		t.Fatalf("got %s, want %s", decision.Action, ActionUpdated)
	}
	want := time.Date(2021, 1, 1, 12, 0, 0, 0, loc)
	if decision.Resolved.Unix() != want.Unix() {
		t.Fatalf("resolved instant %v, want %v", decision.Resolved, want)
	}
}
