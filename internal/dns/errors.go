// Package dns provides DNS message parsing and encoding for a static responder.
//
// Standards Compliance:
//
//   - RFC 1035: Domain Names - Implementation and Specification (wire format)
//   - RFC 1034: Domain Names - Concepts and Facilities (CNAME semantics)
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//
// Scope:
//
// Inbound messages are only ever queries, so only the header and the single
// question are decoded. Resource records are encoded, never decoded. Message
// compression pointers are neither produced nor accepted.
//
// Type-Oriented Design:
//
// Record payloads are a closed set of types (A, AAAA, CNAME, TXT) behind the
// RData interface. A single type switch in Payload produces the wire bytes, so
// adding a payload type means adding one case.
//
// Error Handling:
//
// All errors wrap ErrDNSError. Callers match the specific kind with errors.Is.
package dns

import (
	"errors"
	"fmt"
)

var (
	// ErrDNSError is the umbrella sentinel for DNS protocol violations.
	ErrDNSError = errors.New("dns wire error")

	// ErrTruncatedMessage means a buffer ended before a field it should contain.
	ErrTruncatedMessage = fmt.Errorf("%w: truncated message", ErrDNSError)

	// ErrLabelTooLong means a name component exceeds 63 bytes.
	ErrLabelTooLong = fmt.Errorf("%w: label too long", ErrDNSError)

	// ErrNameTooLong means an encoded name exceeds 255 bytes.
	ErrNameTooLong = fmt.Errorf("%w: name too long", ErrDNSError)

	// ErrEmptyLabel means a name contains an empty component ("a..b").
	ErrEmptyLabel = fmt.Errorf("%w: empty label", ErrDNSError)

	// ErrUnsupportedRecordType means there is no payload codec for a record type.
	ErrUnsupportedRecordType = fmt.Errorf("%w: unsupported record type", ErrDNSError)
)
