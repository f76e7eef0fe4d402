package replay

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region fixture-tests

// TestFixture_Canonical replays the canonical abcde session and checks
// every expectation. This is the primary regression test for the
// classification rules end to end.
func TestFixture_Canonical(t *testing.T) {
	runFixture(t, filepath.Join("testdata", "canonical_abcde.yaml"))
}

// TestFixture_BulkDelete covers several toasts in one action, in widget id
// order, from a JSON fixture.
func TestFixture_BulkDelete(t *testing.T) {
	runFixture(t, filepath.Join("testdata", "bulk_delete.json"))
}

func runFixture(t *testing.T, path string) {
	t.Helper()
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	results, err := Run(context.Background(), f, orchestrator.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(f.Steps) {
		t.Fatalf("expected %d results, got %d", len(f.Steps), len(results))
	}
	for _, m := range Compare(f, results) {
		t.Error(m.String())
	}
}

func TestLoadFixture_YAMLAnchorsAndNumbers(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "canonical_abcde.yaml"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Document != "canonical-abcde" {
		t.Errorf("document: %q", f.Document)
	}
	root := f.Steps[3].Snapshot["0"]
	if root.WidgetName != "MainContainer" || !reflect.DeepEqual(root.Children, []string{"abcde"}) {
		t.Errorf("anchored root not decoded: %+v", root)
	}
	if f.Steps[0].Snapshot["abcde"].BottomRow != 5 {
		t.Errorf("bottomRow: %v", f.Steps[0].Snapshot["abcde"].BottomRow)
	}
}

func TestParseFixture_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unknown action", `{"steps":[{"action":"rewind"}]}`, "json"},
		{"commit without snapshot", `{"steps":[{"action":"commit"}]}`, "json"},
		{"bad json", `{"steps":`, "json"},
		{"bad yaml", "steps: [action: undo", "yaml"},
		{"bad widget", `{"start":{"w":{"topRow":"high"}}}`, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFixture([]byte(tt.data), tt.format); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFixture_Defaults(t *testing.T) {
	f, err := ParseFixture([]byte(`{"steps":[{"action":"undo"}]}`), "json")
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}
	if f.Start == nil || f.Document != "fixture" {
		t.Errorf("defaults not applied: %+v", f)
	}
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	f := &Fixture{
		Description: "round trip",
		Document:    "doc",
		Start:       widget.Snapshot{"a": {WidgetName: "A", TopRow: 2}},
		Steps: []FixtureStep{
			{Action: ActionCommit, Snapshot: widget.Snapshot{"a": {WidgetName: "A", TopRow: 3}}},
			{Action: ActionUndo},
		},
	}
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFixture(path, f); err != nil {
				t.Fatalf("WriteFixture: %v", err)
			}
			got, err := LoadFixture(path)
			if err != nil {
				t.Fatalf("LoadFixture: %v", err)
			}
			if len(got.Steps) != 2 || got.Steps[0].Snapshot["a"].TopRow != 3 {
				t.Errorf("steps did not survive: %+v", got.Steps)
			}
			if got.Start["a"].WidgetName != "A" {
				t.Errorf("start did not survive: %+v", got.Start)
			}
		})
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

// #endregion fixture-tests
