package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/replay"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to canvas_replay.db (DB mode)")
	document := flag.String("document", "", "document id to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON or YAML (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") ||
		(*dbPath != "" && *document == "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/canvas_replay.db --document id")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.yaml")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *document)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}

	results, err := replay.Run(context.Background(), f, orchestrator.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printComparison(f, results, replay.Compare(f, results))
}

// #endregion fixture-mode

// #region db-mode

// runDBMode rebuilds the document's stored chain and walks it back to the
// first version and forward again, printing the effects of every step.
func runDBMode(dbPath, documentID string) int {
	store, err := state.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	chain, err := store.Chain(documentID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load chain: %v\n", err)
		return 2
	}
	f, err := replay.FromChain(documentID, chain, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build script: %v\n", err)
		return 2
	}
	fmt.Printf("Document %s: %d stored versions\n\n", documentID, len(chain))

	results, err := replay.Run(context.Background(), f, orchestrator.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printComparison(f, results, nil)
}

// #endregion db-mode

// #region output

func printComparison(f *replay.Fixture, results []replay.StepResult, mismatches []replay.Mismatch) int {
	byStep := make(map[int][]replay.Mismatch)
	for _, m := range mismatches {
		byStep[m.Step] = append(byStep[m.Step], m)
	}

	fmt.Printf("%-20s| %-7s| %-30s| %s\n", "Step", "Action", "Replayed", "Match")
	fmt.Printf("%-20s+-%-7s+-%-30s+-%s\n", "--------------------", "-------", "------------------------------", "-----")

	diverged := 0
	for _, r := range results {
		match := "-"
		if f.Steps[r.Index].Expect != nil {
			match = "OK"
		}
		if ms := byStep[r.Index]; len(ms) > 0 {
			match = "DIFF"
			diverged++
		}
		fmt.Printf("%-20s| %-7s| %-30s| %s\n", r.Name, r.Action, describe(r), match)
		for _, m := range byStep[r.Index] {
			fmt.Printf("    %s: want %s, got %s\n", m.Field, m.Want, m.Got)
		}
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d commits, %d undos, %d redos, %d no-ops, %d errors, %d toasts\n",
		s.TotalSteps, s.Commits, s.Undos, s.Redos, s.NoOps, s.Errors, s.Toasts)
	fmt.Printf("Final version: %s\n", s.FinalVersion)
	if diverged > 0 {
		fmt.Printf("%d step(s) diverge\n", diverged)
		return 1
	}
	return 0
}

func describe(r replay.StepResult) string {
	switch {
	case r.Err != nil:
		return "error: " + truncate(r.Err.Error(), 23)
	case !r.Applied:
		return "no-op"
	case r.Effects == nil:
		return "applied"
	}
	var parts []string
	if n := len(r.Effects.Toasts); n > 0 {
		parts = append(parts, fmt.Sprintf("toasts=%d", n))
	}
	if ids := r.Effects.FocusedWidgets(); len(ids) > 0 {
		parts = append(parts, "focus="+strings.Join(ids, ","))
	}
	if ids := r.Effects.UpdatedWidgets(); len(ids) > 0 {
		parts = append(parts, "eval="+strings.Join(ids, ","))
	}
	if len(parts) == 0 {
		return "applied"
	}
	return truncate(strings.Join(parts, " "), 30)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// #endregion output
