package dns

import "github.com/jroosing/minidns/internal/helpers"

// Message is a single-question DNS message (RFC 1035 Section 4.1).
//
// A Message is built eagerly, either by ParseQuery from a datagram or by
// NewResponse for a reply, and is not mutated after that. Authority and
// additional sections are never produced.
type Message struct {
	Header   Header
	Question Question
	Answers  []ResourceRecord
}

// NewResponse builds the reply to query carrying answers in order.
//
// The ID and question are copied from the query. Flags are set to exactly
// QRFlag: a plain, non-authoritative, NOERROR response.
func NewResponse(query Message, answers []ResourceRecord) Message {
	own := make([]ResourceRecord, len(answers))
	copy(own, answers)
	return Message{
		Header: Header{
			ID:    query.Header.ID,
			Flags: QRFlag,
		},
		Question: query.Question,
		Answers:  own,
	}
}

// Marshal serializes the message: header, question, answers.
//
// Section counts are derived from the content (QDCount=1, ANCount=len(Answers),
// NSCount=ARCount=0), whatever the Header fields hold. Either the whole
// message is returned or an error; never a partial buffer.
func (m Message) Marshal() ([]byte, error) {
	h := Header{
		ID:      m.Header.ID,
		Flags:   m.Header.Flags,
		QDCount: 1,
		ANCount: helpers.ClampIntToUint16(len(m.Answers)),
	}

	qb, err := m.Question.Marshal()
	if err != nil {
		return nil, err
	}
	records := make([][]byte, 0, len(m.Answers))
	size := HeaderSize + len(qb)
	for _, rr := range m.Answers {
		b, err := rr.Marshal()
		if err != nil {
			return nil, err
		}
		records = append(records, b)
		size += len(b)
	}

	out := make([]byte, 0, size)
	out = append(out, h.Marshal()...)
	out = append(out, qb...)
	for _, b := range records {
		out = append(out, b...)
	}
	return out, nil
}
