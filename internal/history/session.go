package history

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// ErrSessionClosed is returned by every operation after Close.
var ErrSessionClosed = errors.New("history session closed")

// #region entry
// Entry is one captured snapshot in the history.
type Entry struct {
	VersionID  string
	Snapshot   widget.Snapshot
	CapturedAt time.Time
}

func newEntry(snap widget.Snapshot) Entry {
	return Entry{
		VersionID:  uuid.New().String(),
		Snapshot:   snap.Clone(),
		CapturedAt: time.Now().UTC(),
	}
}

func (e Entry) clone() Entry {
	e.Snapshot = e.Snapshot.Clone()
	return e
}

// #endregion entry

// #region session
// Session is the undo/redo history of one open document: an undo stack,
// the current entry, and a redo stack. It is not safe for concurrent use;
// callers own one session per document and drive it from one goroutine.
type Session struct {
	id      string
	undo    []Entry
	current Entry
	redo    []Entry
	limit   int
	closed  bool
}

// Open starts a session whose current entry is initial. limit caps the
// undo stack; 0 means unbounded.
func Open(initial widget.Snapshot, limit int) *Session {
	if initial == nil {
		initial = widget.Snapshot{}
	}
	return Resume(newEntry(initial), limit)
}

// Resume starts a session at an entry captured elsewhere, e.g. a stored
// version, keeping its version id. The snapshot is cloned.
func Resume(current Entry, limit int) *Session {
	if limit < 0 {
		limit = 0
	}
	if current.VersionID == "" {
		current.VersionID = uuid.New().String()
	}
	if current.CapturedAt.IsZero() {
		current.CapturedAt = time.Now().UTC()
	}
	if current.Snapshot == nil {
		current.Snapshot = widget.Snapshot{}
	} else {
		current.Snapshot = current.Snapshot.Clone()
	}
	return &Session{
		id:      uuid.New().String(),
		current: current,
		limit:   limit,
	}
}

// ID identifies the session.
func (s *Session) ID() string {
	return s.id
}

// Current returns a copy of the live entry.
func (s *Session) Current() (Entry, error) {
	if s.closed {
		return Entry{}, ErrSessionClosed
	}
	return s.current.clone(), nil
}

// #endregion session

// #region push
// Push records snap as the new current entry. The previous current entry
// moves onto the undo stack and the redo stack is discarded.
func (s *Session) Push(snap widget.Snapshot) (Entry, error) {
	if s.closed {
		return Entry{}, ErrSessionClosed
	}
	s.undo = append(s.undo, s.current)
	s.current = newEntry(snap)
	s.redo = nil

	if s.limit > 0 && len(s.undo) > s.limit {
		dropped := len(s.undo) - s.limit
		s.undo = append([]Entry(nil), s.undo[dropped:]...)
		log.Printf("[HISTORY] session=%s dropped %d oldest entries (limit=%d)", shortID(s.id), dropped, s.limit)
	}
	return s.current.clone(), nil
}

// #endregion push

// #region move
// Step is a cursor move: From was current before the move, To is current
// after. Both hold copies; writing to them never reaches history.
type Step struct {
	From Entry
	To   Entry
}

// Undo moves the cursor back one entry. ok is false at the oldest entry,
// in which case nothing changes.
func (s *Session) Undo() (step Step, ok bool, err error) {
	if s.closed {
		return Step{}, false, ErrSessionClosed
	}
	if len(s.undo) == 0 {
		return Step{}, false, nil
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.current)
	step = Step{From: s.current.clone(), To: prev.clone()}
	s.current = prev
	return step, true, nil
}

// Redo moves the cursor forward one entry. ok is false at the newest entry,
// in which case nothing changes.
func (s *Session) Redo() (step Step, ok bool, err error) {
	if s.closed {
		return Step{}, false, ErrSessionClosed
	}
	if len(s.redo) == 0 {
		return Step{}, false, nil
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.current)
	step = Step{From: s.current.clone(), To: next.clone()}
	s.current = next
	return step, true, nil
}

// #endregion move

// #region introspection
// CanUndo reports whether Undo would move the cursor.
func (s *Session) CanUndo() bool {
	return !s.closed && len(s.undo) > 0
}

// CanRedo reports whether Redo would move the cursor.
func (s *Session) CanRedo() bool {
	return !s.closed && len(s.redo) > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (s *Session) Depth() (undo, redo int) {
	return len(s.undo), len(s.redo)
}

// Close releases every captured snapshot. The session is unusable afterwards.
func (s *Session) Close() {
	s.undo = nil
	s.redo = nil
	s.current = Entry{}
	s.closed = true
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	return s.closed
}

// #endregion introspection

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
