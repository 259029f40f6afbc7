package dns

// CNAME is a canonical name record payload: the alias target.
type CNAME struct {
	Target Name
}

// NewCNAME creates a CNAME payload from a dotted target name.
func NewCNAME(target string) CNAME {
	return CNAME{Target: NewName(target)}
}

// Type returns TypeCNAME.
func (CNAME) Type() RecordType { return TypeCNAME }
func (CNAME) isRData()         {}

func (c CNAME) String() string { return c.Target.String() + "." }

// payload is the label-encoded target including its terminator.
func (c CNAME) payload() ([]byte, error) {
	return EncodeName(c.Target)
}
