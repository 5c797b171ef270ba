package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteMediaFile creates a small media file at path with its modification
// time set far in the past so resolution always has work to do.
func WriteMediaFile(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	old := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("age %s: %v", path, err)
	}
}

// WriteSidecar writes a sidecar metadata file next to the media file using
// the plain <path>.json convention.
func WriteSidecar(t testing.TB, mediaPath, content string) {
	t.Helper()

	if err := os.WriteFile(mediaPath+".json", []byte(content), 0o644); err != nil {
		t.Fatalf("write sidecar for %s: %v", mediaPath, err)
	}
}
