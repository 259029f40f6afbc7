package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jroosing/minidns/internal/database"
	"github.com/jroosing/minidns/internal/zone"
)

func main() {
	var (
		dbPath  = flag.String("db", "minidns.db", "SQLite records database")
		merge   = flag.Bool("merge", false, "Keep names not present in the file instead of replacing the store")
		export  = flag.Bool("export", false, "Write the store as YAML to stdout instead of importing")
		dryRun  = flag.Bool("dry-run", false, "Validate the file without writing")
		verbose = flag.Bool("v", false, "Print each imported name")
	)
	flag.Parse()

	if err := run(*dbPath, *merge, *export, *dryRun, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "import-records: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath string, merge, export, dryRun, verbose bool) error {
	ctx := context.Background()

	if export {
		db, err := database.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		entries, err := db.LoadEntries(ctx)
		if err != nil {
			return err
		}
		return zone.WriteYAML(os.Stdout, entries)
	}

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: import-records [-db path] [-merge] [-dry-run] records.yaml")
	}
	entries, err := zone.LoadFile(flag.Arg(0))
	if err != nil {
		return err
	}
	// Same checks the server applies at startup.
	if _, err := zone.NewTable(entries); err != nil {
		return err
	}
	if dryRun {
		fmt.Printf("%d names valid\n", len(entries))
		return nil
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if merge {
		err = db.UpsertEntries(ctx, entries)
	} else {
		err = db.ReplaceEntries(ctx, entries)
	}
	if err != nil {
		return err
	}

	if verbose {
		for _, e := range entries {
			fmt.Printf("  %s ttl=%d values=%d\n", e.Name, e.TTL, e.Count())
		}
	}
	total, err := db.CountNames(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d names into %s (%d total)\n", len(entries), dbPath, total)
	return nil
}
