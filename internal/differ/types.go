package differ

import (
	"strings"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region kind
// Kind tags a change record. Values match the deep-diff wire letters.
type Kind string

const (
	KindNew     Kind = "N" // path exists only on the right-hand side
	KindDeleted Kind = "D" // path exists only on the left-hand side
	KindEdited  Kind = "E" // value at path differs
	KindArray   Kind = "A" // element added or removed inside an array
)

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNew, KindDeleted, KindEdited, KindArray:
		return true
	}
	return false
}

// #endregion kind

// #region change-record
// ChangeRecord is one atomic difference between two snapshots.
// Path[0] is always a widget id; array indices are rendered in decimal.
// LHS/RHS are nil when the corresponding side holds no value. For
// single-segment paths they carry a widget.Definition.
type ChangeRecord struct {
	Kind  Kind          `json:"kind"`
	Path  []string      `json:"path"`
	LHS   any           `json:"lhs,omitempty"`
	RHS   any           `json:"rhs,omitempty"`
	Index int           `json:"index,omitempty"`
	Item  *ChangeRecord `json:"item,omitempty"`
}

// WidgetID returns Path[0], or "" for a malformed record.
func (r ChangeRecord) WidgetID() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[0]
}

// String renders the record as "<kind> a.b.c" for log lines.
func (r ChangeRecord) String() string {
	return string(r.Kind) + " " + strings.Join(r.Path, ".")
}

// #endregion change-record

// #region interfaces
// Differ computes the ordered change records that turn lhs into rhs.
// Implementations must be deterministic for the same two inputs.
type Differ interface {
	Diff(lhs, rhs widget.Snapshot) []ChangeRecord
}

// #endregion interfaces
