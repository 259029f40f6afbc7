package zone

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jroosing/minidns/internal/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `
example.com:
  ttl: 100
  IN:
    A: 127.0.0.1
    AAAA: "::1"
    TXT: This is some text.
alias.example.com:
  ttl: 3600
  class:
    IN:
      CNAME: example.com
`

func sampleTable(t *testing.T) *Table {
	t.Helper()
	entries, err := ParseYAML([]byte(sampleRecords))
	require.NoError(t, err)
	table, err := NewTable(entries)
	require.NoError(t, err)
	return table
}

func TestParseYAML(t *testing.T) {
	entries, err := ParseYAML([]byte(sampleRecords))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "alias.example.com", entries[0].Name)
	assert.Equal(t, uint32(3600), entries[0].TTL)
	v, ok := entries[0].Value(dns.ClassIN, dns.TypeCNAME)
	require.True(t, ok)
	assert.Equal(t, "example.com", v)

	assert.Equal(t, "example.com", entries[1].Name)
	assert.Equal(t, uint32(100), entries[1].TTL)
	assert.Equal(t, 3, entries[1].Count())
}

func TestParseYAMLDefaultTTL(t *testing.T) {
	entries, err := ParseYAML([]byte("host.lan:\n  IN:\n    A: 10.0.0.1\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultTTL, entries[0].TTL)
}

func TestParseYAMLEmpty(t *testing.T) {
	entries, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown class", "a.com:\n  XX:\n    A: 1.2.3.4\n"},
		{"unknown type", "a.com:\n  IN:\n    BOGUS: x\n"},
		{"bad ttl", "a.com:\n  ttl: -5\n"},
		{"entry not a mapping", "a.com: 5\n"},
		{"class not a mapping", "a.com:\n  class: IN\n"},
		{"type repeated in other case", "a.com:\n  IN:\n    a: 1.2.3.4\n    A: 5.6.7.8\n"},
		{"class repeated under class key", "a.com:\n  IN:\n    A: 1.2.3.4\n  class:\n    in:\n      A: 5.6.7.8\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestTableLookup(t *testing.T) {
	table := sampleTable(t)
	assert.Equal(t, 2, table.Len())

	v, ttl, ok := table.Lookup("example.com", dns.ClassIN, dns.TypeA)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", v)
	assert.Equal(t, uint32(100), ttl)

	_, _, ok = table.Lookup("example.com", dns.ClassIN, dns.TypeCNAME)
	assert.False(t, ok)
	_, _, ok = table.Lookup("example.com", dns.ClassCH, dns.TypeA)
	assert.False(t, ok)
	_, _, ok = table.Lookup("missing.example.com", dns.ClassIN, dns.TypeA)
	assert.False(t, ok)
}

func TestTableLookupCaseInsensitive(t *testing.T) {
	table := sampleTable(t)
	for _, name := range []string{"EXAMPLE.com", "Example.Com.", "example.com."} {
		v, _, ok := table.Lookup(name, dns.ClassIN, dns.TypeA)
		require.True(t, ok, name)
		assert.Equal(t, "127.0.0.1", v)
	}
}

func TestTableLookupName(t *testing.T) {
	table := sampleTable(t)

	v, ttl, ok := table.LookupName(dns.NameFromLabels([]string{"ExAmple", "COM"}), dns.ClassIN, dns.TypeA)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", v)
	assert.Equal(t, uint32(100), ttl)

	misses := map[string][]string{
		"dotted single label": {"example.com"},
		"dotted inner label":  {"example.com", ""},
		"leading space":       {" example", "com"},
		"trailing space":      {"example", "com "},
		"empty label":         {"example", "", "com"},
		"root":                nil,
	}
	for name, labels := range misses {
		t.Run(name, func(t *testing.T) {
			_, _, ok := table.LookupName(dns.NameFromLabels(labels), dns.ClassIN, dns.TypeA)
			assert.False(t, ok)
		})
	}

	var nilTable *Table
	_, _, ok = nilTable.LookupName(dns.NewName("example.com"), dns.ClassIN, dns.TypeA)
	assert.False(t, ok)
}

func TestNewTableAcceptsMaxTXT(t *testing.T) {
	_, err := NewTable([]Entry{{
		Name:    "a.com",
		Records: map[dns.RecordClass]map[dns.RecordType]string{dns.ClassIN: {dns.TypeTXT: strings.Repeat("x", 65535)}},
	}})
	assert.NoError(t, err)
}

func TestTableIDNA(t *testing.T) {
	table, err := NewTable([]Entry{{
		Name:    "bücher.example",
		TTL:     60,
		Records: map[dns.RecordClass]map[dns.RecordType]string{dns.ClassIN: {dns.TypeA: "192.0.2.1"}},
	}})
	require.NoError(t, err)

	v, _, ok := table.Lookup("xn--bcher-kva.example", dns.ClassIN, dns.TypeA)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.1", v)

	_, _, ok = table.Lookup("BÜCHER.example", dns.ClassIN, dns.TypeA)
	assert.True(t, ok)
}

func TestNewTableRejectsInvalidEntries(t *testing.T) {
	in := func(rt dns.RecordType, v string) map[dns.RecordClass]map[dns.RecordType]string {
		return map[dns.RecordClass]map[dns.RecordType]string{dns.ClassIN: {rt: v}}
	}
	tests := []struct {
		name  string
		entry Entry
	}{
		{"bad A", Entry{Name: "a.com", Records: in(dns.TypeA, "1.2.3")}},
		{"IPv6 in A", Entry{Name: "a.com", Records: in(dns.TypeA, "::1")}},
		{"bad AAAA", Entry{Name: "a.com", Records: in(dns.TypeAAAA, "10.0.0.1")}},
		{"empty CNAME", Entry{Name: "a.com", Records: in(dns.TypeCNAME, "")}},
		{"CNAME empty label", Entry{Name: "a.com", Records: in(dns.TypeCNAME, "b..com")}},
		{"empty name", Entry{Name: "", Records: in(dns.TypeTXT, "x")}},
		{"TXT over rdata limit", Entry{Name: "a.com", Records: in(dns.TypeTXT, strings.Repeat("x", 65536))}},
		{"label too long", Entry{Name: string(bytes.Repeat([]byte("a"), 64)) + ".com", Records: in(dns.TypeTXT, "x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable([]Entry{tt.entry})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable([]Entry{{Name: "a.com"}, {Name: "A.COM."}})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestNewTableKeepsUnsupportedTypes(t *testing.T) {
	table, err := NewTable([]Entry{{
		Name:    "a.com",
		TTL:     1,
		Records: map[dns.RecordClass]map[dns.RecordType]string{dns.ClassIN: {dns.TypeMX: "10 mail.a.com"}},
	}})
	require.NoError(t, err)
	v, _, ok := table.Lookup("a.com", dns.ClassIN, dns.TypeMX)
	require.True(t, ok)
	assert.Equal(t, "10 mail.a.com", v)
}

func TestTableIsImmutable(t *testing.T) {
	records := map[dns.RecordClass]map[dns.RecordType]string{dns.ClassIN: {dns.TypeA: "10.0.0.1"}}
	table, err := NewTable([]Entry{{Name: "a.com", TTL: 5, Records: records}})
	require.NoError(t, err)

	records[dns.ClassIN][dns.TypeA] = "10.0.0.2"
	e, ok := table.Entry("a.com")
	require.True(t, ok)
	e.Records[dns.ClassIN][dns.TypeA] = "10.0.0.3"

	v, _, _ := table.Lookup("a.com", dns.ClassIN, dns.TypeA)
	assert.Equal(t, "10.0.0.1", v)
}

func TestTableEntriesSorted(t *testing.T) {
	entries := sampleTable(t).Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alias.example.com", entries[0].Name)
	assert.Equal(t, "example.com", entries[1].Name)
}

func TestNilTable(t *testing.T) {
	var table *Table
	_, _, ok := table.Lookup("a.com", dns.ClassIN, dns.TypeA)
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Entries())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	entries, err := ParseYAML([]byte(sampleRecords))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, entries))

	again, err := ParseYAML(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, entries, again)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0o644))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/to/records.yaml")
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Example.COM.", "example.com"},
		{"example.com", "example.com"},
		{"_dmarc.example.com", "_dmarc.example.com"},
		{"münchen.de", "xn--mnchen-3ya.de"},
	}
	for _, tt := range tests {
		got, err := NormalizeName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeName(".")
	assert.Error(t, err)
}
