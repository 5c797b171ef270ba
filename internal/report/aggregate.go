package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Aggregate holds rolled-up file and update counts for one directory.
// Direct counts cover the directory's own media files; subtree counts
// include every descendant directory.
type Aggregate struct {
	DirectFiles    int `toml:"direct_files"`
	DirectUpdated  int `toml:"direct_updated"`
	SubtreeFiles   int `toml:"subtree_files"`
	SubtreeUpdated int `toml:"subtree_updated"`
}

// AddChild folds a child directory's subtree totals into this aggregate.
func (a *Aggregate) AddChild(child Aggregate) {
	a.SubtreeFiles += child.SubtreeFiles
	a.SubtreeUpdated += child.SubtreeUpdated
}

// directoryReport is the persisted per-directory report file layout.
type directoryReport struct {
	RunID       string    `toml:"run_id"`
	GeneratedAt time.Time `toml:"generated_at"`
	Aggregate   Aggregate `toml:"aggregate"`
}

// Files persists directory aggregates as TOML report files, one per scanned
// directory. Parents roll up their subtrees by reading the already-written
// child reports.
type Files struct {
	filename string
	runID    string
}

// NewFiles builds a report-file store. filename is the bare name written
// into each directory; runID tags every report with the run that wrote it.
func NewFiles(filename, runID string) *Files {
	return &Files{filename: filename, runID: runID}
}

// Filename returns the bare report file name.
func (f *Files) Filename() string {
	return f.filename
}

// WriteAggregate persists the aggregate for dir, replacing any previous
// report.
func (f *Files) WriteAggregate(dir string, agg Aggregate) error {
	payload, err := toml.Marshal(directoryReport{
		RunID:       f.runID,
		GeneratedAt: time.Now().UTC(),
		Aggregate:   agg,
	})
	if err != nil {
		return fmt.Errorf("marshal report for %s: %w", dir, err)
	}
	path := filepath.Join(dir, f.filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// ReadAggregate loads the persisted aggregate for dir. The boolean reports
// whether a report file exists; a malformed report is an error, not a
// silent zero.
func (f *Files) ReadAggregate(dir string) (Aggregate, bool, error) {
	path := filepath.Join(dir, f.filename)
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Aggregate{}, false, nil
		}
		return Aggregate{}, false, fmt.Errorf("read report %s: %w", path, err)
	}

	var report directoryReport
	if err := toml.Unmarshal(payload, &report); err != nil {
		return Aggregate{}, false, fmt.Errorf("parse report %s: %w", path, err)
	}
	return report.Aggregate, true, nil
}
