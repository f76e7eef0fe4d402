package canvas

// #region imports
import (
	"log"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/differ"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #endregion

// #region base-properties

// baseProperties are layout-only attributes: changing one moves a widget
// without touching anything its computed properties depend on.
var baseProperties = map[string]struct{}{
	widget.KeyTopRow:      {},
	widget.KeyBottomRow:   {},
	widget.KeyLeftColumn:  {},
	widget.KeyRightColumn: {},
}

// IsBaseProperty reports whether name is a layout-only attribute.
func IsBaseProperty(name string) bool {
	_, ok := baseProperties[name]
	return ok
}

// #endregion

// #region canvas

// Canvas classifies change records of one widget tree into replay effects.
// The tree is only consulted to name widgets whose definition is missing
// from the change record itself.
type Canvas struct {
	tree widget.Snapshot
}

// NewCanvas returns a classifier bound to tree. tree may be nil.
func NewCanvas(tree widget.Snapshot) *Canvas {
	return &Canvas{tree: tree}
}

// #endregion

// #region classify

// Classify returns the rule a record falls under without touching any
// accumulator.
func Classify(rec differ.ChangeRecord) Category {
	switch {
	case len(rec.Path) == 0 || !rec.Kind.Valid():
		return CategorySkipped
	case len(rec.Path) == 1:
		if rec.Kind == differ.KindNew || rec.Kind == differ.KindDeleted {
			return CategoryToast
		}
		return CategorySkipped
	case rec.Kind == differ.KindEdited && len(rec.Path) == 2 && IsBaseProperty(rec.Path[1]):
		return CategoryFocus
	default:
		return CategoryUpdate
	}
}

// ProcessDiff folds one change record into effects. isUndo tells whether
// the surrounding replay action is an undo. Records that match no rule
// are logged and dropped.
func (c *Canvas) ProcessDiff(rec differ.ChangeRecord, effects *Effects, isUndo bool) {
	if effects == nil {
		return
	}
	switch Classify(rec) {
	case CategoryToast:
		effects.Toasts = append(effects.Toasts, c.toast(rec, isUndo))
	case CategoryFocus:
		effects.Widget(rec.Path[0]).Focuses = true
	case CategoryUpdate:
		effects.Widget(rec.Path[0]).Updates = append([]string(nil), rec.Path...)
		effects.Updates = true
	default:
		log.Printf("[CANVAS] skip change record kind=%q path=%v", rec.Kind, rec.Path)
	}
}

// ProcessAll classifies records in order into a fresh Effects.
func (c *Canvas) ProcessAll(records []differ.ChangeRecord, isUndo bool) *Effects {
	effects := NewEffects()
	for _, rec := range records {
		c.ProcessDiff(rec, effects, isUndo)
	}
	return effects
}

// #endregion

// #region toast

// toast builds the notification for a widget-level record. The kind tag
// alone is ambiguous about direction, so the populated side decides:
// only a NEW record that carries a right-hand value reads as a deletion.
func (c *Canvas) toast(rec differ.ChangeRecord, isUndo bool) Toast {
	id := rec.Path[0]
	isCreated := !(rec.Kind == differ.KindNew && rec.RHS != nil)

	populated := rec.LHS
	if populated == nil || (rec.Kind == differ.KindNew && rec.RHS != nil) {
		populated = rec.RHS
	}

	name, ok := widgetName(populated)
	if !ok {
		name, _ = c.tree.Name(id)
	}

	return Toast{
		IsCreated:  isCreated,
		IsUndo:     isUndo,
		WidgetName: name,
		WidgetID:   id,
	}
}

// widgetName extracts the widgetName from a change record side.
func widgetName(v any) (string, bool) {
	switch d := v.(type) {
	case widget.Definition:
		return d.WidgetName, d.WidgetName != ""
	case *widget.Definition:
		if d == nil {
			return "", false
		}
		return d.WidgetName, d.WidgetName != ""
	case map[string]any:
		name, ok := d[widget.KeyWidgetName].(string)
		return name, ok && name != ""
	default:
		return "", false
	}
}

// #endregion
