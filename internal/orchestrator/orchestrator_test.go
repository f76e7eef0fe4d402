package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/history"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region helpers

// recordingApplier keeps every call in order as "kind:id".
type recordingApplier struct {
	calls  []string
	toasts []canvas.Toast
	fail   error
}

func (r *recordingApplier) ShowToast(_ context.Context, t canvas.Toast) error {
	r.calls = append(r.calls, "toast:"+t.WidgetID)
	r.toasts = append(r.toasts, t)
	return r.fail
}

func (r *recordingApplier) Focus(_ context.Context, id string) error {
	r.calls = append(r.calls, "focus:"+id)
	return r.fail
}

func (r *recordingApplier) Reevaluate(_ context.Context, id string, _ []string, _ widget.Snapshot) error {
	r.calls = append(r.calls, "reevaluate:"+id)
	return r.fail
}

type countingObserver struct {
	actions map[string]int
	records map[string]int
	toasts  int
	undo    int
	redo    int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{actions: map[string]int{}, records: map[string]int{}}
}

func (c *countingObserver) ObserveAction(direction, outcome string) {
	c.actions[direction+"/"+outcome]++
}
func (c *countingObserver) ObserveRecord(category string) { c.records[category]++ }
func (c *countingObserver) ObserveToasts(n int) { c.toasts += n }
func (c *countingObserver) SetHistoryDepth(undo, redo int) {
	c.undo, c.redo = undo, redo
}

func newTestOrchestrator(t *testing.T, initial widget.Snapshot, opts Options) *Orchestrator {
	t.Helper()
	o, err := New(context.Background(), "doc", history.Entry{Snapshot: initial}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func abcde(mod func(*widget.Definition)) widget.Snapshot {
	d := widget.Definition{WidgetName: "abcde", Type: "TEXT_WIDGET", TopRow: 1, BottomRow: 5, RightColumn: 16}
	if mod != nil {
		mod(&d)
	}
	return widget.Snapshot{"abcde": d}
}

func mustCommit(t *testing.T, o *Orchestrator, snap widget.Snapshot) history.Entry {
	t.Helper()
	e, err := o.Commit(context.Background(), snap)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return e
}

// #endregion

// #region widget-lifecycle

func TestUndoRedo_WidgetAdded(t *testing.T) {
	ctx := context.Background()
	app := &recordingApplier{}
	o := newTestOrchestrator(t, widget.Snapshot{}, Options{Applier: app})
	added := mustCommit(t, o, abcde(nil))

	res, err := o.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !res.Applied || res.Direction != DirectionUndo {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.FromVersionID != added.VersionID {
		t.Errorf("expected from %s, got %s", added.VersionID, res.FromVersionID)
	}
	want := []canvas.Toast{{IsCreated: true, IsUndo: true, WidgetName: "abcde", WidgetID: "abcde"}}
	if !reflect.DeepEqual(res.Effects.Toasts, want) {
		t.Errorf("undo toasts: got %+v, want %+v", res.Effects.Toasts, want)
	}
	if res.Effects.Updates {
		t.Error("widget removal must not set updates")
	}
	cur, _ := o.Current()
	if len(cur.Snapshot) != 0 {
		t.Errorf("expected empty live tree after undo, got %d widgets", len(cur.Snapshot))
	}

	res, err = o.Redo(ctx)
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	want = []canvas.Toast{{IsCreated: false, IsUndo: false, WidgetName: "abcde", WidgetID: "abcde"}}
	if !reflect.DeepEqual(res.Effects.Toasts, want) {
		t.Errorf("redo toasts: got %+v, want %+v", res.Effects.Toasts, want)
	}
	if res.VersionID != added.VersionID {
		t.Errorf("expected redo to land on %s, got %s", added.VersionID, res.VersionID)
	}
	if len(app.toasts) != 2 {
		t.Errorf("expected 2 rendered toasts, got %d", len(app.toasts))
	}
}

// #endregion

// #region property-changes

func TestUndo_PositionChangeFocuses(t *testing.T) {
	app := &recordingApplier{}
	o := newTestOrchestrator(t, abcde(nil), Options{Applier: app})
	mustCommit(t, o, abcde(func(d *widget.Definition) { d.TopRow = 7 }))

	res, err := o.Undo(context.Background())
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !res.Effects.Widgets["abcde"].Focuses {
		t.Error("expected abcde to be focused")
	}
	if res.Effects.Updates {
		t.Error("position-only change must not set updates")
	}
	if !reflect.DeepEqual(app.calls, []string{"focus:abcde"}) {
		t.Errorf("calls: %v", app.calls)
	}
}

func TestUndoRedo_AttributeAddedUpdates(t *testing.T) {
	ctx := context.Background()
	app := &recordingApplier{}
	o := newTestOrchestrator(t, abcde(nil), Options{Applier: app})
	mustCommit(t, o, abcde(func(d *widget.Definition) {
		d.Attributes = map[string]any{"test": "value"}
	}))

	for _, step := range []func(context.Context) (Result, error){o.Undo, o.Redo} {
		res, err := step(ctx)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if !res.Effects.Updates {
			t.Errorf("%s: expected updates", res.Direction)
		}
		if got := res.Effects.Widgets["abcde"].Updates; !reflect.DeepEqual(got, []string{"abcde", "test"}) {
			t.Errorf("%s: updates path %v", res.Direction, got)
		}
	}
	if !reflect.DeepEqual(app.calls, []string{"reevaluate:abcde", "reevaluate:abcde"}) {
		t.Errorf("calls: %v", app.calls)
	}
}

func TestApplyOrder(t *testing.T) {
	before := widget.Snapshot{
		"b": {WidgetName: "B", TopRow: 1},
		"c": {WidgetName: "C", Attributes: map[string]any{"text": "x"}},
	}
	after := widget.Snapshot{
		"a": {WidgetName: "A"},
		"b": {WidgetName: "B", TopRow: 2},
		"c": {WidgetName: "C", TopRow: 3, Attributes: map[string]any{"text": "y"}},
	}
	app := &recordingApplier{}
	o := newTestOrchestrator(t, before, Options{Applier: app})
	mustCommit(t, o, after)

	if _, err := o.Undo(context.Background()); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	want := []string{"toast:a", "focus:b", "focus:c", "reevaluate:c"}
	if !reflect.DeepEqual(app.calls, want) {
		t.Errorf("calls: got %v, want %v", app.calls, want)
	}
}

// #endregion

// #region boundaries

func TestBoundaryIsNoOp(t *testing.T) {
	ctx := context.Background()
	app := &recordingApplier{}
	obs := newCountingObserver()
	o := newTestOrchestrator(t, abcde(nil), Options{Applier: app, Observer: obs})

	for _, step := range []func(context.Context) (Result, error){o.Undo, o.Redo} {
		res, err := step(ctx)
		if err != nil {
			t.Fatalf("boundary returned error: %v", err)
		}
		if res.Applied || res.Effects != nil {
			t.Errorf("%s: expected no-op, got %+v", res.Direction, res)
		}
	}
	if len(app.calls) != 0 {
		t.Errorf("applier called at boundary: %v", app.calls)
	}
	if obs.actions["undo/noop"] != 1 || obs.actions["redo/noop"] != 1 {
		t.Errorf("noop counters: %v", obs.actions)
	}
	cur, _ := o.Current()
	if cur.Snapshot["abcde"].TopRow != 1 {
		t.Error("boundary no-op mutated live tree")
	}
}

func TestCommitTruncatesRedo(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, abcde(nil), Options{})
	mustCommit(t, o, abcde(func(d *widget.Definition) { d.TopRow = 2 }))
	o.Undo(ctx)
	if !o.CanRedo() {
		t.Fatal("expected redo available")
	}
	mustCommit(t, o, abcde(func(d *widget.Definition) { d.TopRow = 3 }))
	if o.CanRedo() {
		t.Error("commit must discard redo")
	}
	res, _ := o.Redo(ctx)
	if res.Applied {
		t.Error("redo after commit should be a no-op")
	}
}

// #endregion

// #region commit-validation

func TestCommitRejectsInvalidSnapshot(t *testing.T) {
	obs := newCountingObserver()
	o := newTestOrchestrator(t, abcde(nil), Options{Observer: obs})

	bad := widget.Snapshot{"x": {WidgetName: "X", ParentID: "missing"}}
	_, err := o.Commit(context.Background(), bad)
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
	if o.CanUndo() {
		t.Error("rejected commit entered history")
	}
	if obs.actions["commit/rejected"] != 1 {
		t.Errorf("rejected counter: %v", obs.actions)
	}
}

func TestClosedOrchestrator(t *testing.T) {
	o := newTestOrchestrator(t, abcde(nil), Options{})
	o.Close()
	if _, err := o.Undo(context.Background()); !errors.Is(err, history.ErrSessionClosed) {
		t.Errorf("Undo: expected ErrSessionClosed, got %v", err)
	}
	if _, err := o.Commit(context.Background(), abcde(nil)); !errors.Is(err, history.ErrSessionClosed) {
		t.Errorf("Commit: expected ErrSessionClosed, got %v", err)
	}
}

// #endregion

// #region observer-and-errors

func TestObserverCounts(t *testing.T) {
	obs := newCountingObserver()
	o := newTestOrchestrator(t, widget.Snapshot{}, Options{Observer: obs})
	mustCommit(t, o, abcde(nil))
	o.Undo(context.Background())

	if obs.actions["commit/applied"] != 1 || obs.actions["undo/applied"] != 1 {
		t.Errorf("actions: %v", obs.actions)
	}
	if obs.records["toast"] != 1 || obs.toasts != 1 {
		t.Errorf("records=%v toasts=%d", obs.records, obs.toasts)
	}
	if obs.undo != 0 || obs.redo != 1 {
		t.Errorf("depth: undo=%d redo=%d", obs.undo, obs.redo)
	}
}

func TestApplierErrorKeepsHistoryMove(t *testing.T) {
	app := &recordingApplier{fail: errors.New("ui gone")}
	o := newTestOrchestrator(t, widget.Snapshot{}, Options{Applier: app})
	mustCommit(t, o, abcde(nil))

	res, err := o.Undo(context.Background())
	if err == nil {
		t.Fatal("expected applier error")
	}
	if !res.Applied {
		t.Error("history move should still be reported as applied")
	}
	if o.CanUndo() || !o.CanRedo() {
		t.Error("history cursor did not move")
	}
}

// overwritingEvaluator writes into the live tree it is handed.
type overwritingEvaluator struct{ recordingApplier }

func (o *overwritingEvaluator) Reevaluate(_ context.Context, id string, _ []string, live widget.Snapshot) error {
	live[id].Attributes["text"] = "evaluated"
	live["intruder"] = widget.Definition{WidgetName: "intruder"}
	return nil
}

func TestApplierWritesDoNotReachHistory(t *testing.T) {
	ctx := context.Background()
	withText := func(text string) widget.Snapshot {
		return abcde(func(d *widget.Definition) { d.Attributes = map[string]any{"text": text} })
	}
	o := newTestOrchestrator(t, withText("v0"), Options{Applier: &overwritingEvaluator{}})
	mustCommit(t, o, withText("v1"))

	if _, err := o.Undo(ctx); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	cur, _ := o.Current()
	if got := cur.Snapshot["abcde"].Attributes["text"]; got != "v0" {
		t.Fatalf("history entry changed by the evaluator: text=%v", got)
	}
	if _, ok := cur.Snapshot["intruder"]; ok {
		t.Fatal("history entry gained a widget from the evaluator")
	}

	// caller writes to Current are not visible either
	cur.Snapshot["abcde"].Attributes["text"] = "caller"
	again, _ := o.Current()
	if got := again.Snapshot["abcde"].Attributes["text"]; got != "v0" {
		t.Fatalf("caller write reached history: text=%v", got)
	}

	res, err := o.Redo(ctx)
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	want := []string{"abcde", "text"}
	if got := res.Effects.Widgets["abcde"].Updates; !reflect.DeepEqual(got, want) {
		t.Errorf("redo updates: got %v, want %v", got, want)
	}
	if _, ok := res.Effects.Widgets["intruder"]; ok {
		t.Error("redo diff saw the evaluator's widget")
	}
}

func TestApplyNil(t *testing.T) {
	if err := Apply(context.Background(), nil, canvas.NewEffects(), nil); err != nil {
		t.Errorf("nil applier: %v", err)
	}
	if err := Apply(context.Background(), &recordingApplier{}, nil, nil); err != nil {
		t.Errorf("nil effects: %v", err)
	}
}

// #endregion
