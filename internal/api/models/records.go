package models

// RecordValue is one configured (class, type, value) triple.
type RecordValue struct {
	Class string `json:"class"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RecordEntryResponse describes one configured name.
type RecordEntryResponse struct {
	Name    string        `json:"name"`
	TTL     uint32        `json:"ttl"`
	Records []RecordValue `json:"records"`
}

// RecordsResponse is returned by GET /records.
type RecordsResponse struct {
	Count   int                   `json:"count"`
	Entries []RecordEntryResponse `json:"entries"`
}

// AnswerResponse is one answer record as the responder would send it.
type AnswerResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
	TTL  uint32 `json:"ttl"`
	Data string `json:"data"`
}

// ResolveResponse is returned by GET /resolve.
type ResolveResponse struct {
	Name    string           `json:"name"`
	Type    string           `json:"type"`
	RCode   string           `json:"rcode"`
	Source  string           `json:"source,omitempty"`
	Answers []AnswerResponse `json:"answers"`
	Error   string           `json:"error,omitempty"`
}
