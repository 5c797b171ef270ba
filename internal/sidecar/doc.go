// Package sidecar extracts capture timestamps from companion metadata files
// written next to media files by photo-management exports.
//
// The extractor understands both epoch-second schemas (photoTakenTime /
// creationTime objects with a timestamp field) and flat ISO-8601-like
// string fields (creationTime, dateCreated, createDate). Sidecar files are
// decoded as real JSON; malformed content degrades to "no candidate" and
// never aborts a run.
package sidecar
