package dns

import (
	"fmt"
	"net/netip"
)

// A is an IPv4 address record payload.
type A struct {
	Addr netip.Addr
}

// ParseA parses a dotted-quad into an A payload.
func ParseA(s string) (A, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return A{}, fmt.Errorf("%w: invalid IPv4 address %q", ErrDNSError, s)
	}
	if !addr.Is4() {
		return A{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrDNSError, s)
	}
	return A{Addr: addr}, nil
}

// Type returns TypeA.
func (A) Type() RecordType { return TypeA }
func (A) isRData()         {}

func (a A) String() string { return a.Addr.String() }

// payload is the 4 address bytes, most significant first.
func (a A) payload() ([]byte, error) {
	if !a.Addr.Is4() {
		return nil, fmt.Errorf("%w: A record needs an IPv4 address, got %s", ErrDNSError, a.Addr)
	}
	b := a.Addr.As4()
	return b[:], nil
}

// AAAA is an IPv6 address record payload (RFC 3596).
type AAAA struct {
	Addr netip.Addr
}

// ParseAAAA parses an IPv6 address into an AAAA payload.
func ParseAAAA(s string) (AAAA, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return AAAA{}, fmt.Errorf("%w: invalid IPv6 address %q", ErrDNSError, s)
	}
	if !addr.Is6() {
		return AAAA{}, fmt.Errorf("%w: %q is not an IPv6 address", ErrDNSError, s)
	}
	return AAAA{Addr: addr}, nil
}

// Type returns TypeAAAA.
func (AAAA) Type() RecordType { return TypeAAAA }
func (AAAA) isRData()         {}

func (a AAAA) String() string { return a.Addr.String() }

func (a AAAA) payload() ([]byte, error) {
	if !a.Addr.Is6() {
		return nil, fmt.Errorf("%w: AAAA record needs an IPv6 address, got %s", ErrDNSError, a.Addr)
	}
	b := a.Addr.As16()
	return b[:], nil
}
