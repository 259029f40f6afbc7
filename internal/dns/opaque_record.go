package dns

import "strconv"

// TXT is a text record payload.
//
// The text is written as raw bytes with no character-string length prefix;
// RDLENGTH is the only length on the wire.
type TXT struct {
	Text string
}

// Type returns TypeTXT.
func (TXT) Type() RecordType { return TypeTXT }
func (TXT) isRData()         {}

func (t TXT) String() string { return strconv.Quote(t.Text) }

func (t TXT) payload() ([]byte, error) {
	return []byte(t.Text), nil
}
