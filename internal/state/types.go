package state

import (
	"time"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region snapshot-version
// SnapshotVersion is one stored widget tree of a document. ParentID is the
// version the tree was committed on top of; empty for the initial version.
type SnapshotVersion struct {
	VersionID  string
	DocumentID string
	ParentID   string
	Snapshot   widget.Snapshot
	CreatedAt  time.Time
}
// #endregion snapshot-version

// #region version-summary
// VersionSummary is a version row without its tree, for listings.
type VersionSummary struct {
	VersionID   string
	DocumentID  string
	ParentID    string
	WidgetCount int
	Active      bool
	CreatedAt   time.Time
}
// #endregion version-summary
