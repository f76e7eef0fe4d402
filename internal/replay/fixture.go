package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/canvas"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region fixture-types

// Step actions.
const (
	ActionCommit = "commit"
	ActionUndo   = "undo"
	ActionRedo   = "redo"
)

// Fixture is a scripted editing session: a start tree and a sequence of
// commits, undos and redos with optional expectations.
type Fixture struct {
	Description  string          `json:"description" yaml:"description"`
	Document     string          `json:"document,omitempty" yaml:"document,omitempty"`
	HistoryLimit int             `json:"history_limit,omitempty" yaml:"history_limit,omitempty"`
	Start        widget.Snapshot `json:"start" yaml:"start"`
	Steps        []FixtureStep   `json:"steps" yaml:"steps"`
}

// FixtureStep is one user action. Snapshot is required for commits and
// ignored otherwise.
type FixtureStep struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Action   string          `json:"action" yaml:"action"`
	Snapshot widget.Snapshot `json:"snapshot" yaml:"snapshot"`
	Expect   *FixtureExpect  `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// FixtureExpect lists what a step must produce. Unset fields are not
// checked; an empty list means "none".
type FixtureExpect struct {
	Applied *bool          `json:"applied,omitempty" yaml:"applied,omitempty"`
	Error   bool           `json:"error,omitempty" yaml:"error,omitempty"`
	Toasts  []canvas.Toast `json:"toasts,omitempty" yaml:"toasts,omitempty"`
	Updated []string       `json:"updated,omitempty" yaml:"updated,omitempty"`
	Focused []string       `json:"focused,omitempty" yaml:"focused,omitempty"`
	Updates *bool          `json:"updates,omitempty" yaml:"updates,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads a fixture file. .yaml and .yml files are parsed as
// YAML, everything else as JSON.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes data in the given format ("yaml" or "json") and
// checks the step list.
func ParseFixture(data []byte, format string) (*Fixture, error) {
	var f Fixture
	var err error
	if format == "yaml" {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, err
	}
	if f.Start == nil {
		f.Start = widget.Snapshot{}
	}
	if f.Document == "" {
		f.Document = "fixture"
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that every step names a known action and that commits
// carry a tree.
func (f *Fixture) Validate() error {
	for i, s := range f.Steps {
		switch s.Action {
		case ActionUndo, ActionRedo:
		case ActionCommit:
			if s.Snapshot == nil {
				return fmt.Errorf("step %d: commit without snapshot", i)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i, s.Action)
		}
	}
	return nil
}

// WriteFixture encodes f to path, choosing the format from the extension.
func WriteFixture(path string, f *Fixture) error {
	var data []byte
	var err error
	if formatOf(path) == "yaml" {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// #endregion fixture-loader
