package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jroosing/minidns/internal/config"
	"github.com/jroosing/minidns/internal/database"
	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/resolvers"
	"github.com/jroosing/minidns/internal/server"
)

// servedTypes are the question types printed for every configured name.
var servedTypes = []dns.RecordType{dns.TypeA, dns.TypeAAAA, dns.TypeCNAME, dns.TypeTXT}

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (or set MINIDNS_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if flag.NArg() == 1 {
		cfg.Records.File = flag.Arg(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "print-records: %v\n", err)
		os.Exit(1)
	}
}

// run prints, for every configured name and served type, the answer
// section the responder would send.
func run(cfg *config.Config) error {
	ctx := context.Background()

	var db *database.DB
	if cfg.Records.Database != "" {
		var err error
		db, err = database.Open(cfg.Records.Database)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	table, err := server.LoadRecordTable(ctx, cfg, db)
	if err != nil {
		return err
	}
	resolver := resolvers.NewStaticResolver(table)

	fmt.Printf("NAMES: %d\n", table.Len())
	for _, e := range table.Entries() {
		fmt.Printf("%s (ttl %d)\n", e.Name, e.TTL)
		for _, t := range servedTypes {
			res, err := resolver.Resolve(ctx, dns.NewQuestion(e.Name, t, dns.ClassIN))
			switch {
			case errors.Is(err, resolvers.ErrNoAnswer):
				continue
			case err != nil:
				fmt.Printf("  %s: SERVFAIL (%v)\n", t, err)
				continue
			}
			for _, rr := range res.Answers {
				fmt.Printf("  %s\n", rr.String())
			}
		}
	}
	return nil
}
