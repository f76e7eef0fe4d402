package replay

import (
	"fmt"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
)

// #region from-chain

// FromChain turns a stored version chain (oldest first) into a fixture:
// the first version is the start tree, every later version a commit.
// With walk set, the script then undoes back to the start and redoes to
// the head, so every transition is replayed in both directions.
func FromChain(documentID string, chain []state.SnapshotVersion, walk bool) (*Fixture, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("document %s: empty version chain", documentID)
	}
	f := &Fixture{
		Description: fmt.Sprintf("exported from document %s (%d versions)", documentID, len(chain)),
		Document:    documentID,
		Start:       chain[0].Snapshot,
	}
	for _, v := range chain[1:] {
		f.Steps = append(f.Steps, FixtureStep{
			Name:     "commit-" + shortID(v.VersionID),
			Action:   ActionCommit,
			Snapshot: v.Snapshot,
		})
	}
	if walk {
		for i := len(chain) - 1; i > 0; i-- {
			f.Steps = append(f.Steps, FixtureStep{
				Name:   "undo-" + shortID(chain[i].VersionID),
				Action: ActionUndo,
			})
		}
		for i := 1; i < len(chain); i++ {
			f.Steps = append(f.Steps, FixtureStep{
				Name:   "redo-" + shortID(chain[i].VersionID),
				Action: ActionRedo,
			})
		}
	}
	return f, nil
}

// Freeze records each step's observed outcome as its expectation, turning
// a run into a regression baseline.
func Freeze(f *Fixture, results []StepResult) {
	for i := range f.Steps {
		if i >= len(results) {
			return
		}
		r := results[i]
		applied := r.Applied
		exp := &FixtureExpect{Applied: &applied, Error: r.Err != nil}
		if r.Action != ActionCommit {
			effects := r.Effects
			if effects == nil {
				effects = canvas.NewEffects()
			}
			updates := effects.Updates
			exp.Toasts = append([]canvas.Toast{}, effects.Toasts...)
			exp.Updated = append([]string{}, effects.UpdatedWidgets()...)
			exp.Focused = append([]string{}, effects.FocusedWidgets()...)
			exp.Updates = &updates
		}
		f.Steps[i].Expect = exp
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion from-chain
