// Package resolve implements the timestamp resolution and application
// policy.
//
// A Resolver tries its extractors in strict priority order (sidecar,
// embedded metadata, directory name), adopts the first candidate, compares
// it with the file's current modification time, and either rewrites the
// timestamp or records why it did not. Every per-file failure is absorbed
// into the Decision; resolution never aborts a traversal.
package resolve
