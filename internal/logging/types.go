package logging

import "time"

// #region replay-entry
// ReplayEntry is a single row in the replay_log table: one applied undo,
// redo or commit of a document.
type ReplayEntry struct {
	ID             int64
	DocumentID     string
	VersionID      string   // version that became live
	Direction      string   // "undo" | "redo" | "commit"
	ToastCount     int
	UpdatedWidgets []string // stored comma-joined
	FocusedWidgets []string // stored comma-joined
	EffectsJSON    string
	CreatedAt      time.Time
}
// #endregion replay-entry
