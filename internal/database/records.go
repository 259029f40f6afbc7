package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/helpers"
	"github.com/jroosing/minidns/internal/zone"
)

// ErrNotFound is returned when a name has no row in the store.
var ErrNotFound = errors.New("record not found")

type txExec interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReplaceEntries atomically swaps the whole store for entries.
func (db *DB) ReplaceEntries(ctx context.Context, entries []zone.Entry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM names"); err != nil {
		return fmt.Errorf("failed to clear names: %w", err)
	}
	for _, e := range entries {
		if err := upsertEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// UpsertEntries inserts or replaces entries, keeping names not mentioned.
func (db *DB) UpsertEntries(ctx context.Context, entries []zone.Entry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := upsertEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// upsertEntry writes one name and replaces all its record values.
func upsertEntry(ctx context.Context, tx txExec, e zone.Entry) error {
	key, err := zone.NormalizeName(e.Name)
	if err != nil {
		return fmt.Errorf("entry %q: %w", e.Name, err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO names (name, lookup_key, ttl, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(lookup_key) DO UPDATE SET
			name = excluded.name,
			ttl = excluded.ttl,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, e.Name, key, int64(e.TTL)).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to write name %s: %w", e.Name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE name_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear records for %s: %w", e.Name, err)
	}
	for class, byType := range e.Records {
		for rt, value := range byType {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO records (name_id, class, type, value) VALUES (?, ?, ?, ?)",
				id, int(class), int(rt), value)
			if err != nil {
				return fmt.Errorf("failed to add %s %s %s: %w", e.Name, class, rt, err)
			}
		}
	}
	return nil
}

// LoadEntries reads every entry, ordered by lookup key.
func (db *DB) LoadEntries(ctx context.Context) ([]zone.Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT n.lookup_key, n.name, n.ttl, r.class, r.type, r.value
		FROM names n
		LEFT JOIN records r ON r.name_id = n.id
		ORDER BY n.lookup_key, r.class, r.type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var (
		entries []zone.Entry
		lastKey string
	)
	for rows.Next() {
		var (
			key, name string
			ttl       int64
			class, rt sql.NullInt64
			value     sql.NullString
		)
		if err := rows.Scan(&key, &name, &ttl, &class, &rt, &value); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if len(entries) == 0 || key != lastKey {
			entries = append(entries, zone.Entry{
				Name:    name,
				TTL:     helpers.ClampInt64ToUint32(ttl),
				Records: map[dns.RecordClass]map[dns.RecordType]string{},
			})
			lastKey = key
		}
		if !class.Valid {
			continue
		}
		e := &entries[len(entries)-1]
		c := dns.RecordClass(helpers.ClampIntToUint16(int(class.Int64)))
		if e.Records[c] == nil {
			e.Records[c] = map[dns.RecordType]string{}
		}
		e.Records[c][dns.RecordType(helpers.ClampIntToUint16(int(rt.Int64)))] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes a name and all its records.
func (db *DB) DeleteEntry(ctx context.Context, name string) error {
	key, err := zone.NormalizeName(name)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, "DELETE FROM names WHERE lookup_key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// CountNames returns the number of stored names.
func (db *DB) CountNames(ctx context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM names").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count names: %w", err)
	}
	return n, nil
}
