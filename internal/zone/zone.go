// Package zone holds the static name-to-record table the responder answers
// from.
//
// The table is built once at startup from YAML, the SQLite store or inline
// configuration, and is read-only afterwards; it may be shared between
// goroutines without locking.
package zone

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jroosing/minidns/internal/dns"
	"golang.org/x/net/idna"
)

// maxTXTLength is the largest TXT value that fits in an RDLENGTH field.
const maxTXTLength = 65535

// ErrInvalidEntry is returned when a configured entry cannot be served.
var ErrInvalidEntry = errors.New("invalid zone entry")

// Entry is one configured name: a TTL shared by all its records plus the
// record values keyed by class and type.
//
// Values are strings as written in the configuration: a dotted quad for A,
// an IPv6 literal for AAAA, a target name for CNAME, free text for TXT.
type Entry struct {
	Name    string
	TTL     uint32
	Records map[dns.RecordClass]map[dns.RecordType]string
}

// Value returns the configured value for (class, type).
func (e Entry) Value(class dns.RecordClass, t dns.RecordType) (string, bool) {
	v, ok := e.Records[class][t]
	return v, ok
}

// Count returns the number of record values in the entry.
func (e Entry) Count() int {
	n := 0
	for _, byType := range e.Records {
		n += len(byType)
	}
	return n
}

func (e Entry) clone() Entry {
	out := Entry{Name: e.Name, TTL: e.TTL, Records: make(map[dns.RecordClass]map[dns.RecordType]string, len(e.Records))}
	for c, byType := range e.Records {
		m := make(map[dns.RecordType]string, len(byType))
		for t, v := range byType {
			m[t] = v
		}
		out.Records[c] = m
	}
	return out
}

// Table is an immutable index of entries by normalized name.
type Table struct {
	entries map[string]Entry
	names   []string
}

// NewTable validates entries and indexes them by normalized name.
//
// Values that the responder would have to encode (A, AAAA, CNAME, TXT) are
// checked here so a bad configuration fails at startup instead of per query.
// Two entries that normalize to the same name are rejected.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key, err := NormalizeName(e.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidEntry, e.Name, err)
		}
		if prev, dup := t.entries[key]; dup {
			return nil, fmt.Errorf("%w: %q duplicates %q", ErrInvalidEntry, e.Name, prev.Name)
		}
		if err := validateEntry(key, e); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidEntry, e.Name, err)
		}
		t.entries[key] = e.clone()
		t.names = append(t.names, key)
	}
	sort.Strings(t.names)
	return t, nil
}

// Lookup returns the value and TTL configured for (name, class, type).
func (t *Table) Lookup(name string, class dns.RecordClass, rt dns.RecordType) (string, uint32, bool) {
	e, ok := t.Entry(name)
	if !ok {
		return "", 0, false
	}
	v, ok := e.Value(class, rt)
	if !ok {
		return "", 0, false
	}
	return v, e.TTL, true
}

// LookupName is Lookup for a name taken off the wire. Labels are matched
// as received: a label holding a dot or surrounding whitespace never matches
// a configured name.
func (t *Table) LookupName(name dns.Name, class dns.RecordClass, rt dns.RecordType) (string, uint32, bool) {
	if t == nil {
		return "", 0, false
	}
	key, ok := keyFromLabels(name.Labels())
	if !ok {
		return "", 0, false
	}
	e, ok := t.entries[key]
	if !ok {
		return "", 0, false
	}
	v, ok := e.Value(class, rt)
	if !ok {
		return "", 0, false
	}
	return v, e.TTL, true
}

// Entry returns the entry for name, matched case-insensitively.
func (t *Table) Entry(name string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	key, err := NormalizeName(name)
	if err != nil {
		return Entry{}, false
	}
	e, ok := t.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries returns a copy of all entries ordered by normalized name.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, t.entries[n].clone())
	}
	return out
}

// Len returns the number of configured names.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// NormalizeName returns the lookup key for a domain name: lowercase, without
// the trailing dot, and with internationalized labels in their ASCII
// (punycode) form.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if n == "" {
		return "", errors.New("empty name")
	}
	if isASCII(n) {
		return n, nil
	}
	ascii, err := idna.ToASCII(n)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return ascii, nil
}

// keyFromLabels builds the table key for a wire name without the trimming
// NormalizeName applies to configured names.
func keyFromLabels(labels []string) (string, bool) {
	if len(labels) == 0 {
		return "", false
	}
	for _, l := range labels {
		if l == "" || strings.Contains(l, ".") {
			return "", false
		}
	}
	key := strings.ToLower(strings.Join(labels, "."))
	if isASCII(key) {
		return key, true
	}
	ascii, err := idna.ToASCII(key)
	if err != nil || strings.Count(ascii, ".") != len(labels)-1 {
		return "", false
	}
	return ascii, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func validateEntry(key string, e Entry) error {
	if _, err := dns.EncodeName(dns.NewName(key)); err != nil {
		return err
	}
	for class, byType := range e.Records {
		for rt, v := range byType {
			if err := validateValue(rt, v); err != nil {
				return fmt.Errorf("%s %s %q: %w", class, rt, v, err)
			}
		}
	}
	return nil
}

func validateValue(rt dns.RecordType, v string) error {
	switch rt {
	case dns.TypeA:
		_, err := dns.ParseA(v)
		return err
	case dns.TypeAAAA:
		_, err := dns.ParseAAAA(v)
		return err
	case dns.TypeCNAME:
		target := dns.NewName(v)
		if target.IsRoot() {
			return errors.New("empty CNAME target")
		}
		_, err := dns.EncodeName(target)
		return err
	case dns.TypeTXT:
		if len(v) > maxTXTLength {
			return fmt.Errorf("TXT value is %d bytes, limit %d", len(v), maxTXTLength)
		}
		return nil
	default:
		return nil
	}
}
