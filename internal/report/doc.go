// Package report persists scan results in two forms: per-directory TOML
// aggregate files that parents read to roll up subtree counts, and a SQLite
// run-history database holding every per-file decision.
//
// The database is transient bookkeeping rather than a long-term archive;
// schema changes bump the version in schema.go and users delete the file to
// adopt the new schema.
package report
