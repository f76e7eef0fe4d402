package widget

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// #region keys
// Canonical attribute keys of a widget definition.
const (
	KeyWidgetName  = "widgetName"
	KeyType        = "type"
	KeyParentID    = "parentId"
	KeyTopRow      = "topRow"
	KeyBottomRow   = "bottomRow"
	KeyLeftColumn  = "leftColumn"
	KeyRightColumn = "rightColumn"
	KeyChildren    = "children"
	KeyWidgetID    = "widgetId"
)

// RootID is the id of the main canvas container.
const RootID = "0"

// #endregion keys

// #region definition
// Definition is one widget's configuration. Known attributes are typed;
// everything else lives in Attributes and passes through encoding untouched.
type Definition struct {
	WidgetName  string
	Type        string
	ParentID    string
	TopRow      float64
	BottomRow   float64
	LeftColumn  float64
	RightColumn float64
	Children    []string
	Attributes  map[string]any
}

// #endregion definition

// #region fields
// Fields flattens the definition into a generic attribute tree. Typed
// attributes win over same-named entries in Attributes. Nested values are
// copied, so the result shares no maps or slices with d.
//
// Geometry keys are always present: a widget without a stored position
// reads as row and column 0.
func (d Definition) Fields() map[string]any {
	out := make(map[string]any, len(d.Attributes)+8)
	for k, v := range d.Attributes {
		out[k] = deepCopy(v)
	}
	if d.WidgetName != "" {
		out[KeyWidgetName] = d.WidgetName
	}
	if d.Type != "" {
		out[KeyType] = d.Type
	}
	if d.ParentID != "" {
		out[KeyParentID] = d.ParentID
	}
	out[KeyTopRow] = d.TopRow
	out[KeyBottomRow] = d.BottomRow
	out[KeyLeftColumn] = d.LeftColumn
	out[KeyRightColumn] = d.RightColumn
	if d.Children != nil {
		children := make([]any, len(d.Children))
		for i, c := range d.Children {
			children[i] = c
		}
		out[KeyChildren] = children
	}
	return out
}

// FromMap builds a Definition from a decoded attribute tree. Numeric values
// of any Go type are normalized to float64.
func FromMap(m map[string]any) (Definition, error) {
	var d Definition
	for k, raw := range m {
		v := normalize(raw)
		var err error
		switch k {
		case KeyWidgetName:
			d.WidgetName, err = asString(k, v)
		case KeyType:
			d.Type, err = asString(k, v)
		case KeyParentID:
			d.ParentID, err = asString(k, v)
		case KeyTopRow:
			d.TopRow, err = asNumber(k, v)
		case KeyBottomRow:
			d.BottomRow, err = asNumber(k, v)
		case KeyLeftColumn:
			d.LeftColumn, err = asNumber(k, v)
		case KeyRightColumn:
			d.RightColumn, err = asNumber(k, v)
		case KeyChildren:
			d.Children, err = asStrings(k, v)
		default:
			if d.Attributes == nil {
				d.Attributes = make(map[string]any)
			}
			d.Attributes[k] = v
		}
		if err != nil {
			return Definition{}, err
		}
	}
	return d, nil
}

// #endregion fields

// #region encoding
// MarshalJSON writes the flattened attribute tree.
func (d Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Fields())
}

// UnmarshalJSON reads a flattened attribute tree.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode widget: %w", err)
	}
	def, err := FromMap(m)
	if err != nil {
		return err
	}
	*d = def
	return nil
}

// MarshalYAML writes the flattened attribute tree.
func (d Definition) MarshalYAML() (interface{}, error) {
	return d.Fields(), nil
}

// UnmarshalYAML reads a flattened attribute tree.
func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("decode widget: %w", err)
	}
	def, err := FromMap(m)
	if err != nil {
		return err
	}
	*d = def
	return nil
}

// #endregion encoding

// #region helpers
func asString(key string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("widget attribute %s: want string, got %T", key, v)
	}
	return s, nil
}

func asNumber(key string, v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("widget attribute %s: want number, got %T", key, v)
	}
	return f, nil
}

func asStrings(key string, v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("widget attribute %s: want list, got %T", key, v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("widget attribute %s[%d]: want string, got %T", key, i, item)
		}
		out[i] = s
	}
	return out, nil
}

// normalize converts every numeric type to float64 and recurses into
// maps and slices so values decoded by different codecs compare equal.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, inner := range x {
			out[k] = normalize(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, inner := range x {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, inner := range x {
			out[i] = inner
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, inner := range x {
			out[i] = normalize(inner)
		}
		return out
	default:
		return v
	}
}

// deepCopy clones maps and slices of a normalized value.
func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, inner := range x {
			out[k] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, inner := range x {
			out[i] = deepCopy(inner)
		}
		return out
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion helpers
