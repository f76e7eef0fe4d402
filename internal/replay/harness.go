package replay

import (
	"context"
	"fmt"
	"reflect"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/history"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region types

// StepResult is the outcome of replaying one fixture step.
type StepResult struct {
	Index     int
	Name      string
	Action    string
	Applied   bool
	VersionID string // live version after the step
	Effects   *canvas.Effects
	Err       error
}

// Summary aggregates a run.
type Summary struct {
	TotalSteps   int
	Commits      int
	Undos        int
	Redos        int
	NoOps        int
	Errors       int
	Toasts       int
	FinalVersion string
}

// Mismatch is one expectation a step did not meet.
type Mismatch struct {
	Step  int
	Name  string
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %d (%s) %s: want %s, got %s", m.Step, m.Name, m.Field, m.Want, m.Got)
}

// #endregion types

// #region run

// Run replays the fixture through a fresh in-memory orchestrator. opts
// supplies optional collaborators; without an applier effects are only
// collected, not rendered. A failing step is recorded and the run goes on.
func Run(ctx context.Context, f *Fixture, opts orchestrator.Options) ([]StepResult, error) {
	if opts.Applier == nil {
		opts.Applier = discardApplier{}
	}
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = f.HistoryLimit
	}
	o, err := orchestrator.New(ctx, f.Document, history.Entry{Snapshot: f.Start}, opts)
	if err != nil {
		return nil, fmt.Errorf("open orchestrator: %w", err)
	}
	defer o.Close()

	results := make([]StepResult, 0, len(f.Steps))
	for i, step := range f.Steps {
		r := StepResult{Index: i, Name: step.Name, Action: step.Action}
		if r.Name == "" {
			r.Name = fmt.Sprintf("%s-%d", step.Action, i)
		}

		switch step.Action {
		case ActionCommit:
			entry, err := o.Commit(ctx, step.Snapshot)
			r.Err = err
			r.Applied = err == nil
			if err == nil {
				r.VersionID = entry.VersionID
			}
		case ActionUndo, ActionRedo:
			var res orchestrator.Result
			if step.Action == ActionUndo {
				res, err = o.Undo(ctx)
			} else {
				res, err = o.Redo(ctx)
			}
			r.Err = err
			r.Applied = res.Applied
			r.Effects = res.Effects
		default:
			r.Err = fmt.Errorf("unknown action %q", step.Action)
		}

		if cur, err := o.Current(); err == nil {
			r.VersionID = cur.VersionID
		}
		results = append(results, r)
	}
	return results, nil
}

// Summarize computes aggregate stats from step results.
func Summarize(results []StepResult) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Errors++
		}
		switch {
		case !r.Applied:
			if r.Err == nil {
				s.NoOps++
			}
		case r.Action == ActionCommit:
			s.Commits++
		case r.Action == ActionUndo:
			s.Undos++
		case r.Action == ActionRedo:
			s.Redos++
		}
		if r.Effects != nil {
			s.Toasts += len(r.Effects.Toasts)
		}
		s.FinalVersion = r.VersionID
	}
	return s
}

// #endregion run

// #region compare

// Compare checks every step's expectations against its result.
func Compare(f *Fixture, results []StepResult) []Mismatch {
	var out []Mismatch
	for i, step := range f.Steps {
		if step.Expect == nil || i >= len(results) {
			continue
		}
		r := results[i]
		exp := step.Expect
		add := func(field string, want, got any) {
			out = append(out, Mismatch{Step: i, Name: r.Name, Field: field,
				Want: fmt.Sprint(want), Got: fmt.Sprint(got)})
		}

		if exp.Error != (r.Err != nil) {
			add("error", exp.Error, r.Err)
		}
		if exp.Applied != nil && *exp.Applied != r.Applied {
			add("applied", *exp.Applied, r.Applied)
		}

		effects := r.Effects
		if effects == nil {
			effects = canvas.NewEffects()
		}
		if exp.Toasts != nil && !toastsEqual(exp.Toasts, effects.Toasts) {
			add("toasts", exp.Toasts, effects.Toasts)
		}
		if exp.Updated != nil && !idsEqual(exp.Updated, effects.UpdatedWidgets()) {
			add("updated", exp.Updated, effects.UpdatedWidgets())
		}
		if exp.Focused != nil && !idsEqual(exp.Focused, effects.FocusedWidgets()) {
			add("focused", exp.Focused, effects.FocusedWidgets())
		}
		if exp.Updates != nil && *exp.Updates != effects.Updates {
			add("updates", *exp.Updates, effects.Updates)
		}
	}
	return out
}

func toastsEqual(a, b []canvas.Toast) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func idsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion compare

// #region discard-applier

type discardApplier struct{}

func (discardApplier) ShowToast(context.Context, canvas.Toast) error { return nil }
func (discardApplier) Focus(context.Context, string) error { return nil }
func (discardApplier) Reevaluate(context.Context, string, []string, widget.Snapshot) error {
	return nil
}

// #endregion discard-applier
