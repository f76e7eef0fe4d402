package canvas

import "sort"

// #region toast
// Toast is one user-visible notification about a widget appearing or
// disappearing during an undo or redo.
type Toast struct {
	IsCreated  bool   `json:"isCreated" yaml:"isCreated"`
	IsUndo     bool   `json:"isUndo" yaml:"isUndo"`
	WidgetName string `json:"widgetName" yaml:"widgetName"`
	WidgetID   string `json:"widgetId" yaml:"widgetId"`
}

// #endregion toast

// #region widget-effect
// WidgetEffect is the per-widget outcome of one replay action. Updates
// holds the path that triggered re-evaluation (nil when none); Focuses is
// set when the widget only needs to be scrolled into view.
type WidgetEffect struct {
	Updates []string `json:"updates,omitempty"`
	Focuses bool     `json:"focuses,omitempty"`
}

// NeedsUpdate reports whether the widget's properties must be re-evaluated.
func (w *WidgetEffect) NeedsUpdate() bool {
	return w != nil && w.Updates != nil
}

// #endregion widget-effect

// #region effects
// Effects accumulates the classification of every change record of a
// single undo or redo action. A fresh value is built per action.
type Effects struct {
	Toasts  []Toast                  `json:"toasts,omitempty"`
	Widgets map[string]*WidgetEffect `json:"widgets,omitempty"`
	Updates bool                     `json:"updates"`
}

// NewEffects returns an empty accumulator.
func NewEffects() *Effects {
	return &Effects{}
}

// Widget returns the entry for id, creating it on first use.
func (e *Effects) Widget(id string) *WidgetEffect {
	if e.Widgets == nil {
		e.Widgets = make(map[string]*WidgetEffect)
	}
	w, ok := e.Widgets[id]
	if !ok {
		w = &WidgetEffect{}
		e.Widgets[id] = w
	}
	return w
}

// UpdatedWidgets returns, in sorted order, ids whose properties must be
// re-evaluated.
func (e *Effects) UpdatedWidgets() []string {
	var ids []string
	for id, w := range e.Widgets {
		if w.NeedsUpdate() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// FocusedWidgets returns, in sorted order, ids that need visual focus.
func (e *Effects) FocusedWidgets() []string {
	var ids []string
	for id, w := range e.Widgets {
		if w.Focuses {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the action produced no visible effect.
func (e *Effects) Empty() bool {
	return len(e.Toasts) == 0 && len(e.Widgets) == 0 && !e.Updates
}

// #endregion effects

// #region category
// Category names the classification rule a change record matched.
type Category string

const (
	CategoryToast   Category = "toast"
	CategoryFocus   Category = "focus"
	CategoryUpdate  Category = "update"
	CategorySkipped Category = "skipped"
)

// #endregion category
