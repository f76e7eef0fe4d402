package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/differ"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/history"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #endregion

// #region orchestrator-struct

// Orchestrator sequences undo and redo for one open document: it moves the
// history cursor, diffs the two trees, classifies every change record and
// hands the effects to the UI layers. It is not safe for concurrent use.
type Orchestrator struct {
	documentID string
	session    *history.Session
	differ     differ.Differ
	applier    Applier
	recorder   Recorder
	observer   Observer
}

// Options wires the collaborators. Zero values fall back to TreeDiffer,
// LogApplier, no persistence and no metrics.
type Options struct {
	Differ       differ.Differ
	Applier      Applier
	Recorder     Recorder
	Observer     Observer
	HistoryLimit int // 0 = unbounded
}

// #endregion

// #region constructor

// New opens a history session for documentID at initial. If a recorder is
// set, the initial entry is persisted before New returns.
func New(ctx context.Context, documentID string, initial history.Entry, opts Options) (*Orchestrator, error) {
	if opts.Differ == nil {
		opts.Differ = differ.NewTreeDiffer()
	}
	if opts.Applier == nil {
		opts.Applier = LogApplier{}
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	o := &Orchestrator{
		documentID: documentID,
		session:    history.Resume(initial, opts.HistoryLimit),
		differ:     opts.Differ,
		applier:    opts.Applier,
		recorder:   opts.Recorder,
		observer:   opts.Observer,
	}

	if o.recorder != nil {
		cur, _ := o.session.Current()
		if err := o.recorder.RecordOpen(ctx, documentID, cur); err != nil {
			return nil, fmt.Errorf("record open: %w", err)
		}
	}
	o.observer.SetHistoryDepth(0, 0)
	return o, nil
}

// #endregion

// #region accessors

// DocumentID returns the document the orchestrator replays.
func (o *Orchestrator) DocumentID() string {
	return o.documentID
}

// Current returns the live history entry.
func (o *Orchestrator) Current() (history.Entry, error) {
	return o.session.Current()
}

// CanUndo reports whether Undo would apply anything.
func (o *Orchestrator) CanUndo() bool {
	return o.session.CanUndo()
}

// CanRedo reports whether Redo would apply anything.
func (o *Orchestrator) CanRedo() bool {
	return o.session.CanRedo()
}

// Depth returns the undo and redo stack sizes.
func (o *Orchestrator) Depth() (undo, redo int) {
	return o.session.Depth()
}

// Close tears the history down. Stored versions are untouched.
func (o *Orchestrator) Close() {
	o.session.Close()
	log.Printf("[REPLAY] document=%s session closed", o.documentID)
}

// #endregion

// #region commit

// Commit records an edit as the new live tree and discards the redo
// stack. Invalid trees are rejected with ErrInvalidSnapshot. A recorder
// failure is returned together with the pushed entry.
func (o *Orchestrator) Commit(ctx context.Context, snap widget.Snapshot) (history.Entry, error) {
	if v := widget.Validate(snap); !v.Passed {
		o.observer.ObserveAction(string(DirectionCommit), "rejected")
		return history.Entry{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, v.Reason)
	}

	parent, err := o.session.Current()
	if err != nil {
		return history.Entry{}, err
	}
	entry, err := o.session.Push(snap)
	if err != nil {
		return history.Entry{}, err
	}

	o.observer.ObserveAction(string(DirectionCommit), "applied")
	o.observer.SetHistoryDepth(o.session.Depth())
	log.Printf("[REPLAY] document=%s commit version=%s widgets=%d",
		o.documentID, shortID(entry.VersionID), len(entry.Snapshot))

	if o.recorder != nil {
		if err := o.recorder.RecordCommit(ctx, o.documentID, parent, entry); err != nil {
			log.Printf("[REPLAY] record commit failed: %v", err)
			return entry, fmt.Errorf("record commit: %w", err)
		}
	}
	return entry, nil
}

// #endregion

// #region undo-redo

// Undo moves back one step and applies the effects of diffing the newer
// tree against the older one. At the oldest entry it is a no-op.
func (o *Orchestrator) Undo(ctx context.Context) (Result, error) {
	return o.replay(ctx, DirectionUndo)
}

// Redo moves forward one step. At the newest entry it is a no-op.
func (o *Orchestrator) Redo(ctx context.Context) (Result, error) {
	return o.replay(ctx, DirectionRedo)
}

func (o *Orchestrator) replay(ctx context.Context, dir Direction) (Result, error) {
	var (
		step history.Step
		ok   bool
		err  error
	)
	if dir == DirectionUndo {
		step, ok, err = o.session.Undo()
	} else {
		step, ok, err = o.session.Redo()
	}
	if err != nil {
		return Result{}, err
	}
	if !ok {
		o.observer.ObserveAction(string(dir), "noop")
		log.Printf("[REPLAY] document=%s %s: at history boundary, nothing to do", o.documentID, dir)
		return Result{Direction: dir}, nil
	}

	records := o.differ.Diff(step.From.Snapshot, step.To.Snapshot)
	cv := canvas.NewCanvas(nameTree(step.From.Snapshot, step.To.Snapshot))
	effects := canvas.NewEffects()
	for _, rec := range records {
		o.observer.ObserveRecord(string(canvas.Classify(rec)))
		cv.ProcessDiff(rec, effects, dir == DirectionUndo)
	}

	res := Result{
		Applied:       true,
		Direction:     dir,
		Effects:       effects,
		VersionID:     step.To.VersionID,
		FromVersionID: step.From.VersionID,
		Records:       len(records),
	}

	o.observer.ObserveAction(string(dir), "applied")
	o.observer.ObserveToasts(len(effects.Toasts))
	o.observer.SetHistoryDepth(o.session.Depth())
	log.Printf("[REPLAY] document=%s %s %s→%s records=%d toasts=%d updated=%d focused=%d",
		o.documentID, dir, shortID(step.From.VersionID), shortID(step.To.VersionID),
		len(records), len(effects.Toasts), len(effects.UpdatedWidgets()), len(effects.FocusedWidgets()))

	var errs []error
	if err := Apply(ctx, o.applier, effects, step.To.Snapshot); err != nil {
		errs = append(errs, err)
	}
	if o.recorder != nil {
		if err := o.recorder.RecordReplay(ctx, o.documentID, res); err != nil {
			log.Printf("[REPLAY] record %s failed: %v", dir, err)
			errs = append(errs, fmt.Errorf("record %s: %w", dir, err))
		}
	}
	return res, errors.Join(errs...)
}

// #endregion

// #region helpers

// nameTree resolves widget names for records whose own value is empty.
// The destination tree wins; widgets only present in the source fill in.
func nameTree(from, to widget.Snapshot) widget.Snapshot {
	out := make(widget.Snapshot, len(from)+len(to))
	for id, d := range from {
		out[id] = d
	}
	for id, d := range to {
		out[id] = d
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion
