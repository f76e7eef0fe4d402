package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/replay"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to canvas_replay.db")
	document := flag.String("document", "", "document id to export")
	outPath := flag.String("out", "", "output fixture path (.json, .yaml or .yml)")
	walk := flag.Bool("walk", true, "append undo/redo steps over the whole chain")
	freeze := flag.Bool("freeze", true, "record the replayed effects as expectations")
	flag.Parse()

	if *dbPath == "" || *document == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --document id --out path/to/fixture.yaml [--walk=false] [--freeze=false]")
		os.Exit(2)
	}

	if err := run(*dbPath, *document, *outPath, *walk, *freeze); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, documentID, outPath string, walk, freeze bool) error {
	store, err := state.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	chain, err := store.Chain(documentID)
	if err != nil {
		return fmt.Errorf("load chain: %w", err)
	}
	f, err := replay.FromChain(documentID, chain, walk)
	if err != nil {
		return err
	}

	if freeze {
		results, err := replay.Run(context.Background(), f, orchestrator.Options{})
		if err != nil {
			return fmt.Errorf("replay chain: %w", err)
		}
		replay.Freeze(f, results)
	}

	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}
	fmt.Printf("Exported %d versions as %d steps to %s\n", len(chain), len(f.Steps), outPath)
	return nil
}

// #endregion export
