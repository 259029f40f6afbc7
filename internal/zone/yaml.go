package zone

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jroosing/minidns/internal/dns"
	"gopkg.in/yaml.v3"
)

// DefaultTTL applies to entries that do not set ttl.
const DefaultTTL uint32 = 3600

// UnmarshalYAML decodes one entry of a record file:
//
//	example.com:
//	  ttl: 3600
//	  IN:
//	    A: 127.0.0.1
//	    TXT: This is some text.
//
// The class mapping may also sit under a "class" key.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: entry must be a mapping", node.Line)
	}
	e.TTL = DefaultTTL
	e.Records = make(map[dns.RecordClass]map[dns.RecordType]string)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch strings.ToLower(key.Value) {
		case "ttl":
			if err := val.Decode(&e.TTL); err != nil {
				return fmt.Errorf("line %d: ttl: %w", val.Line, err)
			}
		case "class":
			if val.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: class must be a mapping", val.Line)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				if err := e.decodeClass(val.Content[j], val.Content[j+1]); err != nil {
					return err
				}
			}
		default:
			if err := e.decodeClass(key, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Entry) decodeClass(key, val *yaml.Node) error {
	class, ok := dns.ParseRecordClass(key.Value)
	if !ok {
		return fmt.Errorf("line %d: unknown record class %q", key.Line, key.Value)
	}
	var raw map[string]string
	if err := val.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: %s records: %w", val.Line, class, err)
	}
	byType := e.Records[class]
	if byType == nil {
		byType = make(map[dns.RecordType]string, len(raw))
		e.Records[class] = byType
	}
	for name, v := range raw {
		rt, ok := dns.ParseRecordType(name)
		if !ok {
			return fmt.Errorf("line %d: unknown record type %q", val.Line, name)
		}
		if _, dup := byType[rt]; dup {
			return fmt.Errorf("line %d: duplicate %s %s record", val.Line, class, rt)
		}
		byType[rt] = v
	}
	return nil
}

// MarshalYAML writes the entry in the same shape UnmarshalYAML reads.
func (e Entry) MarshalYAML() (any, error) {
	out := map[string]any{"ttl": e.TTL}
	for class, byType := range e.Records {
		m := make(map[string]string, len(byType))
		for rt, v := range byType {
			m[rt.String()] = v
		}
		out[class.String()] = m
	}
	return out, nil
}

// ParseYAML decodes a record file into entries ordered by name.
func ParseYAML(b []byte) ([]Entry, error) {
	var doc map[string]Entry
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return FromMap(doc), nil
}

// FromMap turns a name-keyed map (as found inline in the server config)
// into entries ordered by name.
func FromMap(m map[string]Entry) []Entry {
	out := make([]Entry, 0, len(m))
	for name, e := range m {
		e.Name = name
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ToMap is the inverse of FromMap.
func ToMap(entries []Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for _, e := range entries {
		out[e.Name] = e
	}
	return out
}

// LoadFile reads a YAML record file.
func LoadFile(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(b)
}

// WriteYAML writes entries as a record file.
func WriteYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ToMap(entries)); err != nil {
		return err
	}
	return enc.Close()
}
