package history

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

func snap(name string) widget.Snapshot {
	return widget.Snapshot{"w": {WidgetName: name}}
}

func currentName(t *testing.T, s *Session) string {
	t.Helper()
	e, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	return e.Snapshot["w"].WidgetName
}

func TestOpen(t *testing.T) {
	s := Open(snap("v0"), 0)
	if s.ID() == "" {
		t.Fatal("expected session id")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("fresh session should have no undo or redo")
	}
	if currentName(t, s) != "v0" {
		t.Fatalf("expected v0, got %s", currentName(t, s))
	}
}

func TestOpen_NilInitial(t *testing.T) {
	s := Open(nil, 0)
	e, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if e.Snapshot == nil {
		t.Fatal("expected empty snapshot, got nil")
	}
}

func TestUndoRedoCycle(t *testing.T) {
	s := Open(snap("v0"), 0)
	e1, _ := s.Push(snap("v1"))
	e2, _ := s.Push(snap("v2"))

	step, ok, err := s.Undo()
	if err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}
	if step.From.VersionID != e2.VersionID || step.To.VersionID != e1.VersionID {
		t.Errorf("unexpected step %s -> %s", step.From.VersionID, step.To.VersionID)
	}
	if currentName(t, s) != "v1" {
		t.Errorf("expected v1 after undo, got %s", currentName(t, s))
	}

	step, ok, _ = s.Redo()
	if !ok || step.To.VersionID != e2.VersionID {
		t.Fatalf("Redo: ok=%v to=%s", ok, step.To.VersionID)
	}
	if currentName(t, s) != "v2" {
		t.Errorf("expected v2 after redo, got %s", currentName(t, s))
	}
}

func TestBoundariesAreNoOps(t *testing.T) {
	s := Open(snap("v0"), 0)

	if _, ok, err := s.Undo(); ok || err != nil {
		t.Fatalf("undo at oldest: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Redo(); ok || err != nil {
		t.Fatalf("redo at newest: ok=%v err=%v", ok, err)
	}
	if currentName(t, s) != "v0" {
		t.Error("boundary no-op changed current entry")
	}
}

func TestPushTruncatesRedo(t *testing.T) {
	s := Open(snap("v0"), 0)
	s.Push(snap("v1"))
	s.Push(snap("v2"))
	s.Undo()
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo entries")
	}

	s.Push(snap("v1b"))
	if s.CanRedo() {
		t.Error("new edit must truncate the redo stack")
	}
	undo, redo := s.Depth()
	if undo != 1 || redo != 0 {
		t.Errorf("depth: undo=%d redo=%d", undo, redo)
	}
}

func TestPushCapturesClone(t *testing.T) {
	s := Open(snap("v0"), 0)
	live := snap("v1")
	s.Push(live)

	live["w"] = widget.Definition{WidgetName: "edited"}
	if currentName(t, s) != "v1" {
		t.Error("history entry changed with the caller's tree")
	}
}

func TestLimitDropsOldest(t *testing.T) {
	s := Open(snap("v0"), 2)
	s.Push(snap("v1"))
	s.Push(snap("v2"))
	s.Push(snap("v3"))

	undo, _ := s.Depth()
	if undo != 2 {
		t.Fatalf("expected undo depth 2, got %d", undo)
	}
	s.Undo()
	s.Undo()
	if currentName(t, s) != "v1" {
		t.Errorf("expected v1 as oldest reachable entry, got %s", currentName(t, s))
	}
	if _, ok, _ := s.Undo(); ok {
		t.Error("v0 should have been dropped")
	}
}

func TestClose(t *testing.T) {
	s := Open(snap("v0"), 0)
	s.Push(snap("v1"))
	s.Close()

	if !s.Closed() {
		t.Fatal("expected closed")
	}
	if _, err := s.Current(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Current: expected ErrSessionClosed, got %v", err)
	}
	if _, err := s.Push(snap("v2")); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Push: expected ErrSessionClosed, got %v", err)
	}
	if _, _, err := s.Undo(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Undo: expected ErrSessionClosed, got %v", err)
	}
	if s.CanUndo() {
		t.Error("closed session cannot undo")
	}
}

func TestResumeKeepsVersionID(t *testing.T) {
	live := snap("stored")
	s := Resume(Entry{VersionID: "v-stored", Snapshot: live}, 0)

	e, _ := s.Current()
	if e.VersionID != "v-stored" {
		t.Fatalf("expected v-stored, got %s", e.VersionID)
	}
	if e.CapturedAt.IsZero() {
		t.Error("expected capture time to be filled")
	}
	live["w"] = widget.Definition{WidgetName: "edited"}
	if currentName(t, s) != "stored" {
		t.Error("resumed entry shares the caller's tree")
	}
}

func TestReturnedEntriesAreCopies(t *testing.T) {
	s := Open(snap("v0"), 0)
	pushed, _ := s.Push(snap("v1"))
	pushed.Snapshot["w"] = widget.Definition{WidgetName: "pushed"}

	cur, _ := s.Current()
	cur.Snapshot["w"] = widget.Definition{WidgetName: "current"}
	if currentName(t, s) != "v1" {
		t.Fatalf("write through returned entry reached history: %s", currentName(t, s))
	}

	step, ok, err := s.Undo()
	if err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}
	step.From.Snapshot["w"] = widget.Definition{WidgetName: "from"}
	step.To.Snapshot["w"] = widget.Definition{WidgetName: "to"}
	if currentName(t, s) != "v0" {
		t.Fatalf("write through step.To reached history: %s", currentName(t, s))
	}

	step, _, _ = s.Redo()
	if step.To.Snapshot["w"].WidgetName != "v1" {
		t.Fatalf("write through step.From reached history: %s", step.To.Snapshot["w"].WidgetName)
	}
}
