package orchestrator

// #region imports
import (
	"context"
	"errors"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/history"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #endregion

// ErrInvalidSnapshot is returned by Commit when the tree fails validation.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// #region direction

// Direction identifies which way a replay action moves through history.
type Direction string

const (
	DirectionUndo   Direction = "undo"
	DirectionRedo   Direction = "redo"
	DirectionCommit Direction = "commit"
)

// #endregion

// #region result

// Result is the outcome of one undo or redo. Applied is false when the
// history cursor was already at a boundary; Effects is nil in that case.
type Result struct {
	Applied       bool
	Direction     Direction
	Effects       *canvas.Effects
	VersionID     string // version live after the action
	FromVersionID string // version live before the action
	Records       int    // change records classified
}

// #endregion

// #region effect-layers

// ToastPresenter renders one transient notification per toast.
type ToastPresenter interface {
	ShowToast(ctx context.Context, toast canvas.Toast) error
}

// FocusScroller scrolls a widget into view and highlights it.
type FocusScroller interface {
	Focus(ctx context.Context, widgetID string) error
}

// PropertyEvaluator re-runs a widget's computed and bound properties
// against the live tree. path is the change that triggered it.
type PropertyEvaluator interface {
	Reevaluate(ctx context.Context, widgetID string, path []string, live widget.Snapshot) error
}

// Applier is the UI side of a replay action.
type Applier interface {
	ToastPresenter
	FocusScroller
	PropertyEvaluator
}

// #endregion

// #region recorder

// Recorder persists what the orchestrator commits. Errors are logged by
// the orchestrator and returned to the caller; history has already moved.
type Recorder interface {
	RecordOpen(ctx context.Context, documentID string, current history.Entry) error
	RecordCommit(ctx context.Context, documentID string, parent, entry history.Entry) error
	RecordReplay(ctx context.Context, documentID string, res Result) error
}

// #endregion

// #region observer

// Observer receives counters for every action. The metrics package
// implements it.
type Observer interface {
	ObserveAction(direction, outcome string)
	ObserveRecord(category string)
	ObserveToasts(n int)
	SetHistoryDepth(undo, redo int)
}

type nopObserver struct{}

func (nopObserver) ObserveAction(string, string) {}
func (nopObserver) ObserveRecord(string) {}
func (nopObserver) ObserveToasts(int) {}
func (nopObserver) SetHistoryDepth(int, int) {}

// #endregion
