package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/history"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/logging"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
)

// #endregion

// #region store-recorder

// StoreRecorder persists committed trees as snapshot versions, moves the
// document's active pointer on undo and redo, and writes the replay log.
type StoreRecorder struct {
	store *state.Store
}

// NewStoreRecorder returns a recorder backed by store.
func NewStoreRecorder(store *state.Store) *StoreRecorder {
	return &StoreRecorder{store: store}
}

// RecordOpen makes current the active version, storing it first if it
// is not already known.
func (r *StoreRecorder) RecordOpen(_ context.Context, documentID string, current history.Entry) error {
	_, err := r.store.GetVersion(current.VersionID)
	switch {
	case err == nil:
		return r.store.SetActive(documentID, current.VersionID)
	case errors.Is(err, state.ErrNotFound):
		return r.store.CommitSnapshot(state.SnapshotVersion{
			VersionID:  current.VersionID,
			DocumentID: documentID,
			Snapshot:   current.Snapshot,
			CreatedAt:  current.CapturedAt,
		})
	default:
		return err
	}
}

// RecordCommit stores entry as a child of parent and logs the commit.
func (r *StoreRecorder) RecordCommit(_ context.Context, documentID string, parent, entry history.Entry) error {
	err := r.store.CommitSnapshot(state.SnapshotVersion{
		VersionID:  entry.VersionID,
		DocumentID: documentID,
		ParentID:   parent.VersionID,
		Snapshot:   entry.Snapshot,
		CreatedAt:  entry.CapturedAt,
	})
	if err != nil {
		return err
	}
	return logging.LogReplay(r.store.DB(), logging.ReplayEntry{
		DocumentID: documentID,
		VersionID:  entry.VersionID,
		Direction:  string(DirectionCommit),
	})
}

// RecordReplay points the document at the version the action landed on
// and logs the effects.
func (r *StoreRecorder) RecordReplay(_ context.Context, documentID string, res Result) error {
	if !res.Applied {
		return nil
	}
	if err := r.store.SetActive(documentID, res.VersionID); err != nil {
		return err
	}

	entry := logging.ReplayEntry{
		DocumentID: documentID,
		VersionID:  res.VersionID,
		Direction:  string(res.Direction),
	}
	if res.Effects != nil {
		data, err := json.Marshal(res.Effects)
		if err != nil {
			return fmt.Errorf("marshal effects: %w", err)
		}
		entry.ToastCount = len(res.Effects.Toasts)
		entry.UpdatedWidgets = res.Effects.UpdatedWidgets()
		entry.FocusedWidgets = res.Effects.FocusedWidgets()
		entry.EffectsJSON = string(data)
	}
	return logging.LogReplay(r.store.DB(), entry)
}

// #endregion
