// Package timestamp defines the candidate value type shared by every
// timestamp extractor and the resolution policy.
//
// A Candidate is a validated six-field wall-clock value tagged with the
// source that produced it. Extractors signal the absence of a usable value
// with ErrNoCandidate; present-but-unparseable metadata is reported as a
// MalformedError, which unwraps to ErrNoCandidate so resolution falls
// through to the next source.
package timestamp
