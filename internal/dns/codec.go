package dns

import (
	"fmt"
	"strings"
)

// Name limits from RFC 1035 Section 2.3.4.
const (
	MaxLabelLength = 63
	MaxNameLength  = 255
)

// Name is a domain name held both as its labels and as the dotted text.
//
// The two forms are built together and never diverge: the text is always
// the labels joined with ".". The zero Name is the root.
type Name struct {
	labels []string
	text   string
}

// NewName splits a dotted name into labels. A single trailing dot (FQDN
// notation) is dropped, so "example.com." and "example.com" are the same
// name. No other validation happens here; EncodeName rejects bad labels.
func NewName(s string) Name {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return Name{}
	}
	return Name{labels: strings.Split(s, "."), text: s}
}

// NameFromLabels builds a Name from already split labels.
func NameFromLabels(labels []string) Name {
	if len(labels) == 0 {
		return Name{}
	}
	own := make([]string, len(labels))
	copy(own, labels)
	return Name{labels: own, text: strings.Join(own, ".")}
}

// String returns the dotted form without a trailing dot.
func (n Name) String() string { return n.text }

// Labels returns a copy of the name's labels.
func (n Name) Labels() []string {
	if len(n.labels) == 0 {
		return nil
	}
	out := make([]string, len(n.labels))
	copy(out, n.labels)
	return out
}

// IsRoot reports whether the name has no labels.
func (n Name) IsRoot() bool { return len(n.labels) == 0 }

// Equal compares two names label by label, exactly (case-sensitive).
func (n Name) Equal(o Name) bool { return n.text == o.text }

// EncodeLabels writes each label as [len:u8][len bytes]. It does NOT append
// the terminating zero-length label; EncodeName does.
func EncodeLabels(labels []string) ([]byte, error) {
	size := 0
	for _, l := range labels {
		size += 1 + len(l)
	}
	out := make([]byte, 0, size)
	for _, l := range labels {
		if l == "" {
			return nil, fmt.Errorf("%w in %q", ErrEmptyLabel, strings.Join(labels, "."))
		}
		if len(l) > MaxLabelLength {
			return nil, fmt.Errorf("%w (%d > %d): %q", ErrLabelTooLong, len(l), MaxLabelLength, l)
		}
		out = append(out, byte(len(l)))
		out = append(out, l...)
	}
	return out, nil
}

// EncodeName encodes a name to wire format (RFC 1035 Section 3.1).
//
// Example: "example.com" encodes as:
//
//	[7]example[3]com[0]
//	0x07 'e' 'x' 'a' 'm' 'p' 'l' 'e' 0x03 'c' 'o' 'm' 0x00
//
// Case is preserved. Compression is never used.
func EncodeName(n Name) ([]byte, error) {
	b, err := EncodeLabels(n.labels)
	if err != nil {
		return nil, err
	}
	b = append(b, 0)
	if len(b) > MaxNameLength {
		return nil, fmt.Errorf("%w (%d > %d): %q", ErrNameTooLong, len(b), MaxNameLength, n.text)
	}
	return b, nil
}

// DecodeName reads length-prefixed labels from msg starting at *off until
// the zero-length terminator, and advances *off past it.
//
// Compression pointers (11xxxxxx) and the reserved label types (01xxxxxx,
// 10xxxxxx) are rejected: queries never need them.
func DecodeName(msg []byte, off *int) (Name, error) {
	pos := *off
	labels := make([]string, 0, 4)
	wireLen := 0
	for {
		if pos < 0 || pos >= len(msg) {
			return Name{}, fmt.Errorf("%w: name runs past end of message", ErrTruncatedMessage)
		}
		l := msg[pos]
		pos++
		wireLen++

		if l == 0 {
			break
		}
		if l&0xC0 != 0 {
			return Name{}, fmt.Errorf("%w: unsupported label type 0x%02x at offset %d", ErrDNSError, l&0xC0, pos-1)
		}
		if pos+int(l) > len(msg) {
			return Name{}, fmt.Errorf("%w: label of %d bytes at offset %d", ErrTruncatedMessage, l, pos-1)
		}
		labels = append(labels, string(msg[pos:pos+int(l)]))
		pos += int(l)
		wireLen += int(l)

		if wireLen >= MaxNameLength {
			return Name{}, fmt.Errorf("%w: decoded name exceeds %d bytes", ErrNameTooLong, MaxNameLength)
		}
	}
	*off = pos
	if len(labels) == 0 {
		return Name{}, nil
	}
	return Name{labels: labels, text: strings.Join(labels, ".")}, nil
}
