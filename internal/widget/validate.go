package widget

import (
	"fmt"
	"strings"
)

// #region validation-types
// Check captures a single failed validation check.
type Check struct {
	Name     string
	WidgetID string
	Detail   string
}

// ValidationResult is the output of Validate.
type ValidationResult struct {
	Passed bool
	Checks []Check
	Reason string
}

// #endregion validation-types

// #region validate
// Validate runs structural checks on a snapshot before it enters history:
// non-empty widget ids that agree with any widgetId attribute, unique
// widget names, and resolvable parent and child references. Widgets are visited in id order so results are stable.
func Validate(s Snapshot) ValidationResult {
	var checks []Check
	var failReasons []string

	fail := func(c Check) {
		checks = append(checks, c)
		failReasons = append(failReasons, c.Detail)
	}

	names := make(map[string]string)
	for _, id := range s.IDs() {
		d := s[id]

		if strings.TrimSpace(id) == "" {
			fail(Check{Name: "widget_id", WidgetID: id, Detail: "empty widget id"})
			continue
		}

		if raw, ok := d.Attributes[KeyWidgetID]; ok {
			if wid, isStr := raw.(string); !isStr || wid != id {
				fail(Check{
					Name:     "widget_id_match",
					WidgetID: id,
					Detail:   fmt.Sprintf("widget %s: widgetId attribute is %v", id, raw),
				})
			}
		}

		if d.WidgetName != "" {
			if other, dup := names[d.WidgetName]; dup {
				fail(Check{
					Name:     "unique_name",
					WidgetID: id,
					Detail:   fmt.Sprintf("widget name %q used by %s and %s", d.WidgetName, other, id),
				})
			} else {
				names[d.WidgetName] = id
			}
		}

		if d.ParentID != "" {
			if _, ok := s[d.ParentID]; !ok {
				fail(Check{
					Name:     "parent_ref",
					WidgetID: id,
					Detail:   fmt.Sprintf("widget %s: parent %s not found", id, d.ParentID),
				})
			}
		}

		for _, child := range d.Children {
			if _, ok := s[child]; !ok {
				fail(Check{
					Name:     "child_ref",
					WidgetID: id,
					Detail:   fmt.Sprintf("widget %s: child %s not found", id, child),
				})
			}
		}
	}

	if len(failReasons) == 0 {
		return ValidationResult{Passed: true, Checks: checks, Reason: "all checks passed"}
	}

	reason := failReasons[0]
	if len(failReasons) > 1 {
		reason = fmt.Sprintf("%d failed checks, first: %s", len(failReasons), failReasons[0])
	}
	return ValidationResult{Passed: false, Checks: checks, Reason: reason}
}

// #endregion validate
