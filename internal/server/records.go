package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jroosing/minidns/internal/cluster"
	"github.com/jroosing/minidns/internal/config"
	"github.com/jroosing/minidns/internal/database"
	"github.com/jroosing/minidns/internal/zone"
)

// LoadRecordTable gathers entries from every configured source (the open
// record store db if non-nil, the record file, a primary node, the inline
// entries) and
// builds the immutable table the resolver answers from.
//
// A name present in two sources is an error rather than a silent override.
func LoadRecordTable(ctx context.Context, cfg *config.Config, db *database.DB) (*zone.Table, error) {
	var entries []zone.Entry

	if db != nil {
		fromDB, err := db.LoadEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("load records from database: %w", err)
		}
		entries = append(entries, fromDB...)
	}
	if cfg.Records.File != "" {
		fromFile, err := zone.LoadFile(cfg.Records.File)
		if err != nil {
			return nil, fmt.Errorf("load records file: %w", err)
		}
		entries = append(entries, fromFile...)
	}
	if cfg.Records.Primary.URL != "" {
		puller, err := cluster.NewPuller(cfg.Records.Primary, slog.Default())
		if err != nil {
			return nil, err
		}
		fromPrimary, err := puller.Pull(ctx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromPrimary...)
	}
	entries = append(entries, zone.FromMap(cfg.Records.Entries)...)

	table, err := zone.NewTable(entries)
	if err != nil {
		return nil, err
	}
	return table, nil
}
