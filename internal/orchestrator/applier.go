package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #endregion

// #region apply

// Apply hands effects to the UI layers: every toast in order, then for each
// marked widget in id order, focus before re-evaluation. A failing layer
// does not stop the rest; all failures are returned joined.
func Apply(ctx context.Context, a Applier, effects *canvas.Effects, live widget.Snapshot) error {
	if a == nil || effects == nil {
		return nil
	}

	var errs []error
	for _, t := range effects.Toasts {
		if err := a.ShowToast(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("toast %s: %w", t.WidgetID, err))
		}
	}

	for _, id := range markedWidgets(effects) {
		w := effects.Widgets[id]
		if w.Focuses {
			if err := a.Focus(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("focus %s: %w", id, err))
			}
		}
		if w.NeedsUpdate() {
			if err := a.Reevaluate(ctx, id, w.Updates, live); err != nil {
				errs = append(errs, fmt.Errorf("reevaluate %s: %w", id, err))
			}
		}
	}
	return errors.Join(errs...)
}

func markedWidgets(effects *canvas.Effects) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, group := range [][]string{effects.FocusedWidgets(), effects.UpdatedWidgets()} {
		for _, id := range group {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// #endregion

// #region log-applier

// LogApplier writes every effect to the standard logger. It is the
// default when no UI is attached (daemon, CLI replays).
type LogApplier struct{}

// ShowToast logs the notification.
func (LogApplier) ShowToast(_ context.Context, t canvas.Toast) error {
	verb := "removed"
	if t.IsCreated {
		verb = "added"
	}
	log.Printf("[REPLAY] toast: %s %q (%s) undo=%v", verb, t.WidgetName, t.WidgetID, t.IsUndo)
	return nil
}

// Focus logs the scroll target.
func (LogApplier) Focus(_ context.Context, widgetID string) error {
	log.Printf("[REPLAY] focus: %s", widgetID)
	return nil
}

// Reevaluate logs the widget and the triggering path.
func (LogApplier) Reevaluate(_ context.Context, widgetID string, path []string, _ widget.Snapshot) error {
	log.Printf("[REPLAY] reevaluate: %s (path=%v)", widgetID, path)
	return nil
}

// #endregion
