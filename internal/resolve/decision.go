package resolve

import (
	"time"

	"phototime/internal/timestamp"
)

// Action is the terminal outcome of resolving one file.
type Action string

const (
	// ActionUpdated means the file's modification time was rewritten.
	ActionUpdated Action = "updated"
	// ActionIdentical means the resolved timestamp already matched the
	// file's modification time to the second; nothing was touched.
	ActionIdentical Action = "identical"
	// ActionNoTimestamp means every source failed to yield a candidate.
	ActionNoTimestamp Action = "no-timestamp"
	// ActionInvalidFormat means the candidate could not be expressed in the
	// canonical numeric layout; this is a defensive terminal state.
	ActionInvalidFormat Action = "invalid-format"
	// ActionUpdateFailed means the filesystem mutation was refused.
	ActionUpdateFailed Action = "update-failed"
)

// Decision records the outcome of resolving one file. One Decision is
// produced per processed file and handed to the reporting layer.
type Decision struct {
	Path     string
	Source   timestamp.Source
	Resolved time.Time
	Prior    time.Time
	Action   Action
	Detail   string
}

// Updated reports whether the decision mutated (or, in dry-run, would have
// mutated) the file.
func (d Decision) Updated() bool {
	return d.Action == ActionUpdated
}
