package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func entry(name string, ttl uint32, kv ...any) zone.Entry {
	byType := map[dns.RecordType]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		byType[kv[i].(dns.RecordType)] = kv[i+1].(string)
	}
	return zone.Entry{
		Name:    name,
		TTL:     ttl,
		Records: map[dns.RecordClass]map[dns.RecordType]string{dns.ClassIN: byType},
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)
	assert.Equal(t, uint(1), db.SchemaVersion())
	assert.NoError(t, db.Health(context.Background()))
}

func TestOpenTwiceIsNoChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, uint(1), db.SchemaVersion())
}

func TestReplaceAndLoadEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	in := []zone.Entry{
		entry("example.com", 100, dns.TypeA, "127.0.0.1", dns.TypeAAAA, "::1", dns.TypeTXT, "This is some text."),
		entry("alias.example.com", 3600, dns.TypeCNAME, "example.com"),
	}
	require.NoError(t, db.ReplaceEntries(ctx, in))

	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[1], out[0], "ordered by lookup key")
	assert.Equal(t, in[0], out[1])

	n, err := db.CountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReplaceEntriesDropsOldNames(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{entry("old.example", 60, dns.TypeA, "10.0.0.1")}))
	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{entry("new.example", 60, dns.TypeA, "10.0.0.2")}))

	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new.example", out[0].Name)
}

func TestUpsertEntriesMerges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertEntries(ctx, []zone.Entry{
		entry("a.example", 60, dns.TypeA, "10.0.0.1", dns.TypeTXT, "old"),
		entry("b.example", 60, dns.TypeA, "10.0.0.2"),
	}))
	require.NoError(t, db.UpsertEntries(ctx, []zone.Entry{
		entry("A.Example", 120, dns.TypeA, "10.0.0.9"),
	}))

	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "A.Example", out[0].Name, "display name follows the latest write")
	assert.Equal(t, uint32(120), out[0].TTL)
	assert.Equal(t, map[dns.RecordType]string{dns.TypeA: "10.0.0.9"}, out[0].Records[dns.ClassIN])
	assert.Equal(t, "b.example", out[1].Name)
}

func TestLoadEntriesKeepsEmptyNames(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{{Name: "empty.example", TTL: 5}}))
	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint32(5), out[0].TTL)
	assert.Empty(t, out[0].Records)
}

func TestLoadEntriesFeedsTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{
		entry("example.com", 100, dns.TypeA, "127.0.0.1"),
	}))

	entries, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	table, err := zone.NewTable(entries)
	require.NoError(t, err)

	v, ttl, ok := table.Lookup("EXAMPLE.COM", dns.ClassIN, dns.TypeA)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", v)
	assert.Equal(t, uint32(100), ttl)
}

func TestLargeTTLRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{entry("ttl.example", 4294967295, dns.TypeA, "10.0.0.1")}))

	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint32(4294967295), out[0].TTL)
}

func TestDeleteEntry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{entry("gone.example", 60, dns.TypeA, "10.0.0.1")}))

	require.NoError(t, db.DeleteEntry(ctx, "GONE.example."))
	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	err = db.DeleteEntry(ctx, "gone.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceEntriesRejectsBadName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceEntries(ctx, []zone.Entry{entry("keep.example", 60, dns.TypeA, "10.0.0.1")}))

	err := db.ReplaceEntries(ctx, []zone.Entry{{Name: ""}})
	require.Error(t, err)

	out, err := db.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1, "failed replace rolls back")
}
