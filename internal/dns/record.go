package dns

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jroosing/minidns/internal/helpers"
)

// RData is the type-specific payload of a resource record.
//
// The set of implementations is closed (A, AAAA, CNAME, TXT); Payload holds
// the one type switch that turns each of them into wire bytes.
type RData interface {
	// Type returns the DNS record type the payload belongs to.
	Type() RecordType

	isRData()
}

// ResourceRecord is an answer record (RFC 1035 Section 4.1.3).
//
// Name, Class and TTL are the fields shared by every record type; Data
// carries the type and the payload.
type ResourceRecord struct {
	Name  Name
	Class RecordClass
	TTL   uint32
	Data  RData
}

// NewRecord creates an IN-class record.
func NewRecord(name Name, ttl uint32, data RData) ResourceRecord {
	return ResourceRecord{Name: name, Class: ClassIN, TTL: ttl, Data: data}
}

// Type returns the record type, or 0 when the record has no payload.
func (r ResourceRecord) Type() RecordType {
	if r.Data == nil {
		return 0
	}
	return r.Data.Type()
}

// Payload returns the RDATA bytes for the record.
func (r ResourceRecord) Payload() ([]byte, error) {
	switch d := r.Data.(type) {
	case A:
		return d.payload()
	case AAAA:
		return d.payload()
	case CNAME:
		return d.payload()
	case TXT:
		return d.payload()
	case nil:
		return nil, fmt.Errorf("%w: record %q has no data", ErrUnsupportedRecordType, r.Name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRecordType, d.Type())
	}
}

// Marshal serializes the record: encoded owner name, type, class, TTL,
// RDLENGTH and the payload. RDLENGTH is always len(payload).
func (r ResourceRecord) Marshal() ([]byte, error) {
	rdata, err := r.Payload()
	if err != nil {
		return nil, err
	}
	if len(rdata) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: rdata too large: %d bytes (max %d)", ErrDNSError, len(rdata), math.MaxUint16)
	}
	name, err := EncodeName(r.Name)
	if err != nil {
		return nil, fmt.Errorf("encode record name: %w", err)
	}

	out := make([]byte, len(name)+10+len(rdata))
	n := copy(out, name)
	binary.BigEndian.PutUint16(out[n:n+2], uint16(r.Type()))
	binary.BigEndian.PutUint16(out[n+2:n+4], uint16(r.Class))
	binary.BigEndian.PutUint32(out[n+4:n+8], r.TTL)
	binary.BigEndian.PutUint16(out[n+8:n+10], helpers.ClampIntToUint16(len(rdata)))
	copy(out[n+10:], rdata)
	return out, nil
}

// String renders the record in zone-file style for logs and tools.
func (r ResourceRecord) String() string {
	data := "<nil>"
	if r.Data != nil {
		data = fmt.Sprint(r.Data)
	}
	return fmt.Sprintf("%s %d %s %s %s", r.Name, r.TTL, r.Class, r.Type(), data)
}
