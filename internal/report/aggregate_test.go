package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadAggregate(t *testing.T) {
	dir := t.TempDir()
	files := NewFiles(".phototime.toml", "run-1")

	agg := Aggregate{DirectFiles: 3, DirectUpdated: 2, SubtreeFiles: 10, SubtreeUpdated: 7}
	if err := files.WriteAggregate(dir, agg); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, found, err := files.ReadAggregate(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !found {
		t.Fatal("report should exist")
	}
	if got != agg {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, agg)
	}
}

func TestReadAggregateMissing(t *testing.T) {
	files := NewFiles(".phototime.toml", "run-1")
	_, found, err := files.ReadAggregate(t.TempDir())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if found {
		t.Fatal("missing report should not be found")
	}
}

func TestReadAggregateMalformed(t *testing.T) {
	dir := t.TempDir()
	files := NewFiles(".phototime.toml", "run-1")
	if err := os.WriteFile(filepath.Join(dir, ".phototime.toml"), []byte("not = [toml"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := files.ReadAggregate(dir); err == nil {
		t.Fatal("malformed report should error")
	}
}

func TestWriteAggregateOverwrites(t *testing.T) {
	dir := t.TempDir()
	files := NewFiles(".phototime.toml", "run-2")

	if err := files.WriteAggregate(dir, Aggregate{DirectFiles: 1, SubtreeFiles: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := files.WriteAggregate(dir, Aggregate{DirectFiles: 5, SubtreeFiles: 5}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	got, _, err := files.ReadAggregate(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.DirectFiles != 5 {
		t.Fatalf("report not overwritten: %+v", got)
	}
}

func TestAddChild(t *testing.T) {
	parent := Aggregate{DirectFiles: 2, DirectUpdated: 1, SubtreeFiles: 2, SubtreeUpdated: 1}
	parent.AddChild(Aggregate{SubtreeFiles: 4, SubtreeUpdated: 3})
	if parent.SubtreeFiles != 6 || parent.SubtreeUpdated != 4 {
		t.Fatalf("unexpected rollup: %+v", parent)
	}
	if parent.DirectFiles != 2 {
		t.Fatalf("direct counts must not change: %+v", parent)
	}
}
