package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// Struct field names shared by requests and responses.
const (
	fieldDocumentID   = "document_id"
	fieldSnapshot     = "snapshot"
	fieldVersionID    = "version_id"
	fieldCanUndo      = "can_undo"
	fieldCanRedo      = "can_redo"
	fieldApplied      = "applied"
	fieldDirection    = "direction"
	fieldEffects      = "effects"
	fieldHistoryLimit = "history_limit"
)

// #region types
// SessionState is the live tree of an open document.
type SessionState struct {
	DocumentID string
	VersionID  string
	Snapshot   widget.Snapshot
	CanUndo    bool
	CanRedo    bool
}

// ReplayOutcome is the answer to Undo and Redo. Effects is nil when
// Applied is false.
type ReplayOutcome struct {
	DocumentID string
	Applied    bool
	Direction  string
	VersionID  string
	Effects    *canvas.Effects
	CanUndo    bool
	CanRedo    bool
}
// #endregion types

// #region encode
func documentRequest(documentID string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldDocumentID: structpb.NewStringValue(documentID),
	}}
}

func snapshotRequest(documentID string, snap widget.Snapshot) (*structpb.Struct, error) {
	req := documentRequest(documentID)
	if snap == nil {
		return req, nil
	}
	v, err := structpb.NewValue(snap.ToMap())
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	req.Fields[fieldSnapshot] = v
	return req, nil
}

func encodeState(s SessionState) (*structpb.Struct, error) {
	out, err := snapshotRequest(s.DocumentID, s.Snapshot)
	if err != nil {
		return nil, err
	}
	out.Fields[fieldVersionID] = structpb.NewStringValue(s.VersionID)
	out.Fields[fieldCanUndo] = structpb.NewBoolValue(s.CanUndo)
	out.Fields[fieldCanRedo] = structpb.NewBoolValue(s.CanRedo)
	return out, nil
}

func encodeOutcome(o ReplayOutcome) (*structpb.Struct, error) {
	out := documentRequest(o.DocumentID)
	out.Fields[fieldApplied] = structpb.NewBoolValue(o.Applied)
	out.Fields[fieldDirection] = structpb.NewStringValue(o.Direction)
	out.Fields[fieldVersionID] = structpb.NewStringValue(o.VersionID)
	out.Fields[fieldCanUndo] = structpb.NewBoolValue(o.CanUndo)
	out.Fields[fieldCanRedo] = structpb.NewBoolValue(o.CanRedo)
	if o.Effects != nil {
		data, err := json.Marshal(o.Effects)
		if err != nil {
			return nil, fmt.Errorf("encode effects: %w", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("encode effects: %w", err)
		}
		v, err := structpb.NewValue(m)
		if err != nil {
			return nil, fmt.Errorf("encode effects: %w", err)
		}
		out.Fields[fieldEffects] = v
	}
	return out, nil
}
// #endregion encode

// #region decode
func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func boolField(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// snapshotField decodes the snapshot field; ok is false when it is absent.
func snapshotField(s *structpb.Struct) (snap widget.Snapshot, ok bool, err error) {
	v, present := s.GetFields()[fieldSnapshot]
	if !present {
		return nil, false, nil
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, true, fmt.Errorf("%s: want object", fieldSnapshot)
	}
	snap, err = widget.SnapshotFromMap(st.AsMap())
	return snap, true, err
}

func decodeState(s *structpb.Struct) (SessionState, error) {
	snap, _, err := snapshotField(s)
	if err != nil {
		return SessionState{}, err
	}
	if snap == nil {
		snap = widget.Snapshot{}
	}
	return SessionState{
		DocumentID: stringField(s, fieldDocumentID),
		VersionID:  stringField(s, fieldVersionID),
		Snapshot:   snap,
		CanUndo:    boolField(s, fieldCanUndo),
		CanRedo:    boolField(s, fieldCanRedo),
	}, nil
}

func decodeOutcome(s *structpb.Struct) (ReplayOutcome, error) {
	o := ReplayOutcome{
		DocumentID: stringField(s, fieldDocumentID),
		Applied:    boolField(s, fieldApplied),
		Direction:  stringField(s, fieldDirection),
		VersionID:  stringField(s, fieldVersionID),
		CanUndo:    boolField(s, fieldCanUndo),
		CanRedo:    boolField(s, fieldCanRedo),
	}
	if st := s.GetFields()[fieldEffects].GetStructValue(); st != nil {
		data, err := json.Marshal(st.AsMap())
		if err != nil {
			return ReplayOutcome{}, fmt.Errorf("decode effects: %w", err)
		}
		var e canvas.Effects
		if err := json.Unmarshal(data, &e); err != nil {
			return ReplayOutcome{}, fmt.Errorf("decode effects: %w", err)
		}
		o.Effects = &e
	}
	return o, nil
}
// #endregion decode
