// Package scan walks a media library depth-first and feeds every
// recognized media file through the timestamp resolution policy.
//
// Subtrees are fully processed before their parent's own files, and parent
// aggregates are rolled up from the already-persisted child report files,
// so a terminated run leaves consistent reports behind and a re-run is a
// cheap no-op thanks to the policy's idempotence.
package scan
