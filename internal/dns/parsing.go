package dns

import "fmt"

// MaxIncomingMessageSize bounds inbound queries. A single-question query is
// far smaller; anything bigger is not something this server answers.
const MaxIncomingMessageSize = 4096

// ParseQuery decodes the header and the question of an inbound query.
//
// The question is read at offset 12, right after the header. Only the first
// question is used; any further sections are ignored. A message without a
// question (QDCount == 0) is rejected.
//
// Returns an error wrapping ErrTruncatedMessage if the buffer is too short
// for the header or question.
func ParseQuery(msg []byte) (Message, error) {
	if len(msg) > MaxIncomingMessageSize {
		return Message{}, fmt.Errorf("%w: message too large (%d > %d)", ErrDNSError, len(msg), MaxIncomingMessageSize)
	}
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Message{}, err
	}
	if h.QDCount == 0 {
		return Message{}, fmt.Errorf("%w: query has no question", ErrDNSError)
	}
	q, err := ParseQuestion(msg, &off)
	if err != nil {
		return Message{}, err
	}
	return Message{Header: h, Question: q}, nil
}

// BuildErrorResponse constructs an error reply for query with no answers.
// Flags are QR plus the given rcode.
func BuildErrorResponse(query Message, rcode RCode) Message {
	return Message{
		Header: Header{
			ID:    query.Header.ID,
			Flags: QRFlag | (uint16(rcode) & RCodeMask),
		},
		Question: query.Question,
	}
}
