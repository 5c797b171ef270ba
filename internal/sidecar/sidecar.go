package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"phototime/internal/timestamp"
)

// maxSidecarBytes bounds how much of a sidecar file is read. Takeout
// metadata files are a few hundred bytes; anything larger is suspect.
const maxSidecarBytes = 1 << 20

// Extractor reads capture timestamps from companion metadata files exported
// by photo-management services alongside the media files they describe.
type Extractor struct {
	location *time.Location
}

// NewExtractor builds a sidecar extractor. Epoch timestamps found in sidecar
// files are converted to calendar fields in loc (time.Local when nil).
func NewExtractor(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{location: loc}
}

// Name reports the candidate source tag for this extractor.
func (e *Extractor) Name() timestamp.Source {
	return timestamp.SourceSidecar
}

// Locate returns the sidecar path for a media file, trying the known naming
// conventions in precedence order:
//
//	<path>.supplemental-metadata.json
//	<path-without-extension>.json
//	<path>.json
func Locate(path string) (string, bool) {
	withoutExt := strings.TrimSuffix(path, filepath.Ext(path))
	for _, candidate := range []string{
		path + ".supplemental-metadata.json",
		withoutExt + ".json",
		path + ".json",
	} {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Extract locates and parses the sidecar for the given media file. It tries
// the known schema variants in order and returns the first timestamp that
// parses. A missing sidecar, an unknown schema, or malformed content all
// resolve to timestamp.ErrNoCandidate; the extractor never fails a run.
func (e *Extractor) Extract(ctx context.Context, path string) (timestamp.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return timestamp.Candidate{}, err
	}

	sidecarPath, ok := Locate(path)
	if !ok {
		return timestamp.Candidate{}, fmt.Errorf("sidecar for %s: %w", filepath.Base(path), timestamp.ErrNoCandidate)
	}

	payload, err := readCapped(sidecarPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return timestamp.Candidate{}, fmt.Errorf("sidecar for %s: %w", filepath.Base(path), timestamp.ErrNoCandidate)
		}
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "file", err.Error())
	}

	return parseDocument(payload, e.location)
}

// document covers the sidecar schema variants observed in the wild. The
// creationTime field is an object carrying an epoch string in some exports
// and a flat ISO string in others, hence the RawMessage.
type document struct {
	PhotoTakenTime *timeBlock      `json:"photoTakenTime"`
	CreationTime   json.RawMessage `json:"creationTime"`
	DateCreated    string          `json:"dateCreated"`
	CreateDate     string          `json:"createDate"`
}

type timeBlock struct {
	Timestamp string `json:"timestamp"`
}

func parseDocument(payload []byte, loc *time.Location) (timestamp.Candidate, error) {
	var doc document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "json", err.Error())
	}

	if doc.PhotoTakenTime != nil && doc.PhotoTakenTime.Timestamp != "" {
		if c, err := epochCandidate(doc.PhotoTakenTime.Timestamp, loc); err == nil {
			return c, nil
		}
	}

	if block, ok := creationTimeBlock(doc.CreationTime); ok && block.Timestamp != "" {
		if c, err := epochCandidate(block.Timestamp, loc); err == nil {
			return c, nil
		}
	}

	if flat, ok := creationTimeString(doc.CreationTime); ok {
		if c, err := isoCandidate(flat); err == nil {
			return c, nil
		}
	}

	if doc.DateCreated != "" {
		if c, err := isoCandidate(doc.DateCreated); err == nil {
			return c, nil
		}
	}

	if doc.CreateDate != "" {
		if c, err := isoCandidate(doc.CreateDate); err == nil {
			return c, nil
		}
	}

	return timestamp.Candidate{}, fmt.Errorf("sidecar has no recognized timestamp field: %w", timestamp.ErrNoCandidate)
}

func creationTimeBlock(raw json.RawMessage) (timeBlock, bool) {
	if len(raw) == 0 {
		return timeBlock{}, false
	}
	var block timeBlock
	if err := json.Unmarshal(raw, &block); err != nil {
		return timeBlock{}, false
	}
	return block, true
}

func creationTimeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, value != ""
}

func epochCandidate(value string, loc *time.Location) (timestamp.Candidate, error) {
	epoch, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "timestamp", fmt.Sprintf("epoch %q: not a decimal integer", value))
	}
	c := timestamp.FromUnix(timestamp.SourceSidecar, epoch, loc)
	if err := c.Validate(); err != nil {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "timestamp", err.Error())
	}
	return c, nil
}

// isoCandidate parses the first 19 characters of an ISO-8601-like value
// (YYYY-MM-DDTHH:MM:SS) positionally. Fractional seconds and timezone
// suffixes are ignored.
func isoCandidate(value string) (timestamp.Candidate, error) {
	value = strings.TrimSpace(value)
	if len(value) < 19 {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "creationTime", fmt.Sprintf("value %q too short", value))
	}
	if value[4] != '-' || value[7] != '-' || (value[10] != 'T' && value[10] != ' ') || value[13] != ':' || value[16] != ':' {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "creationTime", fmt.Sprintf("value %q is not ISO-8601-like", value))
	}

	fields := make([]int, 6)
	for i, span := range [][2]int{{0, 4}, {5, 7}, {8, 10}, {11, 13}, {14, 16}, {17, 19}} {
		n, err := strconv.Atoi(value[span[0]:span[1]])
		if err != nil {
			return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "creationTime", fmt.Sprintf("value %q has non-numeric segment", value))
		}
		fields[i] = n
	}

	c, err := timestamp.New(timestamp.SourceSidecar, fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		return timestamp.Candidate{}, timestamp.Malformed(timestamp.SourceSidecar, "creationTime", err.Error())
	}
	return c, nil
}

func readCapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSidecarBytes {
		return nil, fmt.Errorf("sidecar %s exceeds %d bytes", filepath.Base(path), maxSidecarBytes)
	}
	return os.ReadFile(path)
}
