package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/logging"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to canvas_replay.db")
	document := flag.String("document", "", "document id")
	last := flag.Int("last", 20, "show N most recent versions and replays")
	version := flag.String("version", "", "show single version detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || (*document == "" && *version == "") {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/canvas_replay.db --document id [--last N] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --db path/to/canvas_replay.db --version id [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *version != "" {
		err = runDetailMode(store, *version, *jsonOut)
	} else {
		err = runListMode(store, *document, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listOutput struct {
	Versions []state.VersionSummary `json:"versions"`
	Replays  []logging.ReplayEntry  `json:"replays"`
}

func runListMode(store *state.Store, documentID string, last int, jsonOut bool) error {
	versions, err := store.ListVersions(documentID, last)
	if err != nil {
		return err
	}
	replays, err := logging.ListReplays(store.DB(), documentID, last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintf(os.Stderr, "no versions found for document %s\n", documentID)
		return nil
	}

	if jsonOut {
		return printJSON(listOutput{Versions: versions, Replays: replays})
	}

	fmt.Printf("%-12s  %-12s  %7s  %-6s  %s\n", "Version", "Parent", "Widgets", "Active", "Time")
	fmt.Printf("%-12s+-%-12s+-%7s+-%-6s+-%s\n",
		"------------", "------------", "-------", "------", "--------------------")
	for _, v := range versions {
		active := ""
		if v.Active {
			active = "*"
		}
		fmt.Printf("%-12s  %-12s  %7d  %-6s  %s\n",
			shortID(v.VersionID), orDash(shortID(v.ParentID)), v.WidgetCount, active,
			v.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}

	if len(replays) == 0 {
		return nil
	}
	fmt.Printf("\n%-6s  %-9s  %-12s  %6s  %-20s  %s\n", "ID", "Direction", "Version", "Toasts", "Focused", "Re-evaluated")
	fmt.Printf("%-6s+-%-9s+-%-12s+-%6s+-%-20s+-%s\n",
		"------", "---------", "------------", "------", "--------------------", "------------")
	for _, r := range replays {
		fmt.Printf("%-6d  %-9s  %-12s  %6d  %-20s  %s\n",
			r.ID, r.Direction, shortID(r.VersionID), r.ToastCount,
			orDash(strings.Join(r.FocusedWidgets, ",")), orDash(strings.Join(r.UpdatedWidgets, ",")))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID  string   `json:"version_id"`
	DocumentID string   `json:"document_id"`
	ParentID   string   `json:"parent_id"`
	CreatedAt  string   `json:"created_at"`
	Widgets    []string `json:"widgets"`
}

func runDetailMode(store *state.Store, versionID string, jsonOut bool) error {
	v, err := store.GetVersion(versionID)
	if err != nil {
		return err
	}

	out := detailOutput{
		VersionID:  v.VersionID,
		DocumentID: v.DocumentID,
		ParentID:   v.ParentID,
		CreatedAt:  v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for id, w := range v.Snapshot {
		out.Widgets = append(out.Widgets, fmt.Sprintf("%s %s (%s) rows %g-%g cols %g-%g",
			id, w.WidgetName, w.Type, w.TopRow, w.BottomRow, w.LeftColumn, w.RightColumn))
	}
	sort.Strings(out.Widgets)

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:  %s\n", out.VersionID)
	fmt.Printf("Document: %s\n", out.DocumentID)
	fmt.Printf("Parent:   %s\n", orDash(out.ParentID))
	fmt.Printf("Created:  %s\n", out.CreatedAt)
	fmt.Printf("\nWidgets (%d):\n", len(out.Widgets))
	for _, w := range out.Widgets {
		fmt.Printf("  %s\n", w)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion output
