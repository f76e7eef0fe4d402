package widget

import (
	"encoding/json"
	"fmt"
)

// #region snapshot
// Snapshot is the full widget tree at one history point, keyed by widget id.
type Snapshot map[string]Definition

// Clone returns a deep copy. History keeps clones so captured snapshots
// never change under later edits to the caller's tree.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for id, d := range s {
		out[id] = d.Clone()
	}
	return out
}

// IDs returns the widget ids in sorted order.
func (s Snapshot) IDs() []string {
	return sortedKeys(s)
}

// Name returns the widgetName of id, if the widget exists and has one.
func (s Snapshot) Name(id string) (string, bool) {
	d, ok := s[id]
	if !ok || d.WidgetName == "" {
		return "", false
	}
	return d.WidgetName, true
}

// #endregion snapshot

// #region clone
// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	out := d
	if d.Children != nil {
		out.Children = append([]string(nil), d.Children...)
	}
	if d.Attributes != nil {
		out.Attributes = make(map[string]any, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = deepCopy(v)
		}
	}
	return out
}

// #endregion clone

// #region codec
// DecodeSnapshot parses a JSON widget map.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// EncodeSnapshot renders a snapshot as JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// SnapshotFromMap converts a generic tree (e.g. a decoded protobuf Struct)
// into a Snapshot.
func SnapshotFromMap(m map[string]any) (Snapshot, error) {
	s := make(Snapshot, len(m))
	for id, raw := range m {
		attrs, ok := normalize(raw).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("widget %s: want object, got %T", id, raw)
		}
		d, err := FromMap(attrs)
		if err != nil {
			return nil, fmt.Errorf("widget %s: %w", id, err)
		}
		s[id] = d
	}
	return s, nil
}

// ToMap converts a snapshot into a generic tree.
func (s Snapshot) ToMap() map[string]any {
	out := make(map[string]any, len(s))
	for id, d := range s {
		out[id] = d.Fields()
	}
	return out
}

// #endregion codec
