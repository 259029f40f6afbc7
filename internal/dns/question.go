package dns

import (
	"encoding/binary"
	"fmt"
)

// Question represents a DNS question section entry (RFC 1035 Section 4.1.2).
//
// Each question specifies what the client is asking for:
//   - Name: The domain name being queried, case preserved
//   - Type: The record type requested (A, AAAA, CNAME, TXT, ...)
//   - Class: Usually ClassIN (Internet)
type Question struct {
	Name  Name
	Type  RecordType
	Class RecordClass
}

// NewQuestion builds a question from a dotted name. The name is split on "."
// exactly as ParseQuestion would produce it from the wire.
func NewQuestion(name string, qtype RecordType, qclass RecordClass) Question {
	return Question{Name: NewName(name), Type: qtype, Class: qclass}
}

// Marshal serializes the question to DNS wire format: the encoded name with
// its terminator, then type and class as big-endian 16-bit values.
func (q Question) Marshal() ([]byte, error) {
	name, err := EncodeName(q.Name)
	if err != nil {
		return nil, fmt.Errorf("encode question name: %w", err)
	}
	b := make([]byte, len(name)+4)
	copy(b, name)
	binary.BigEndian.PutUint16(b[len(name):], uint16(q.Type))
	binary.BigEndian.PutUint16(b[len(name)+2:], uint16(q.Class))
	return b, nil
}

// ParseQuestion parses a question from the message at the given offset.
// It advances *off past the parsed question on success.
func ParseQuestion(msg []byte, off *int) (Question, error) {
	pos := *off
	name, err := DecodeName(msg, &pos)
	if err != nil {
		return Question{}, err
	}
	if pos+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: question type/class missing", ErrTruncatedMessage)
	}
	q := Question{
		Name:  name,
		Type:  RecordType(binary.BigEndian.Uint16(msg[pos : pos+2])),
		Class: RecordClass(binary.BigEndian.Uint16(msg[pos+2 : pos+4])),
	}
	*off = pos + 4
	return q, nil
}

// String renders the question for logs: "example.com A IN".
func (q Question) String() string {
	return q.Name.String() + " " + q.Type.String() + " " + q.Class.String()
}
