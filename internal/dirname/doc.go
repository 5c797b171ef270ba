// Package dirname heuristically extracts a capture year from the name of a
// media file's parent directory, the lowest-confidence timestamp source.
package dirname
