package scan

import (
	"path/filepath"
	"strings"
)

// mediaExtensions is the built-in set of recognized image and video
// extensions, lowercase without the leading dot.
var mediaExtensions = []string{
	"jpg", "jpeg", "png", "heic",
	"mp4", "mov", "avi", "m4v", "mkv", "3gp", "wmv",
}

// ExtensionSet decides which file names count as media files.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds the recognized-extension set, optionally extended
// with additional extensions (lowercase, no dot).
func NewExtensionSet(extra ...string) ExtensionSet {
	set := make(ExtensionSet, len(mediaExtensions)+len(extra))
	for _, ext := range mediaExtensions {
		set[ext] = struct{}{}
	}
	for _, ext := range extra {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// Match reports whether the file name carries a recognized media extension,
// case-insensitively.
func (s ExtensionSet) Match(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	_, ok := s[ext]
	return ok
}
