package resolvers

import (
	"context"
	"fmt"

	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/zone"
)

// Sources reported in Result.Source.
const (
	SourceStatic = "static"
	SourceCNAME  = "static-cname"
)

// StaticResolver answers from an immutable zone.Table.
type StaticResolver struct {
	table *zone.Table
}

// NewStaticResolver creates a resolver over table. A nil table answers
// nothing.
func NewStaticResolver(table *zone.Table) *StaticResolver {
	return &StaticResolver{table: table}
}

// Close is a no-op (satisfies Resolver interface).
func (r *StaticResolver) Close() error { return nil }

// Table returns the table the resolver answers from.
func (r *StaticResolver) Table() *zone.Table { return r.table }

// Resolve answers q from the table.
//
// Returns ErrNoAnswer when nothing matched. A configured value of a type
// with no record codec fails with dns.ErrUnsupportedRecordType.
func (r *StaticResolver) Resolve(ctx context.Context, q dns.Question) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if q.Class != dns.ClassIN {
		return Result{}, ErrNoAnswer
	}

	if value, ttl, ok := r.table.LookupName(q.Name, q.Class, q.Type); ok {
		rr, err := toRecord(q.Name, q.Type, ttl, value)
		if err != nil {
			return Result{}, err
		}
		return Result{Answers: []dns.ResourceRecord{rr}, Source: SourceStatic}, nil
	}

	if !isAddressQuery(q.Type) {
		return Result{}, ErrNoAnswer
	}
	return r.chaseCNAME(q)
}

// chaseCNAME follows one CNAME hop for an A/AAAA question that had no
// direct match. The target's record is only looked up, never chased further.
func (r *StaticResolver) chaseCNAME(q dns.Question) (Result, error) {
	target, aliasTTL, ok := r.table.LookupName(q.Name, q.Class, dns.TypeCNAME)
	if !ok {
		return Result{}, ErrNoAnswer
	}
	cname, err := toRecord(q.Name, dns.TypeCNAME, aliasTTL, target)
	if err != nil {
		return Result{}, err
	}
	answers := []dns.ResourceRecord{cname}

	targetName := dns.NewName(target)
	if value, ttl, ok := r.table.LookupName(targetName, q.Class, q.Type); ok {
		rr, err := toRecord(targetName, q.Type, ttl, value)
		if err != nil {
			return Result{}, err
		}
		answers = append(answers, rr)
	}
	return Result{Answers: answers, Source: SourceCNAME}, nil
}

// isAddressQuery returns true for A or AAAA queries.
func isAddressQuery(t dns.RecordType) bool {
	return t == dns.TypeA || t == dns.TypeAAAA
}

// toRecord converts a configured value into a concrete record.
func toRecord(owner dns.Name, t dns.RecordType, ttl uint32, value string) (dns.ResourceRecord, error) {
	var data dns.RData
	switch t {
	case dns.TypeA:
		a, err := dns.ParseA(value)
		if err != nil {
			return dns.ResourceRecord{}, err
		}
		data = a
	case dns.TypeAAAA:
		a, err := dns.ParseAAAA(value)
		if err != nil {
			return dns.ResourceRecord{}, err
		}
		data = a
	case dns.TypeCNAME:
		data = dns.NewCNAME(value)
	case dns.TypeTXT:
		data = dns.TXT{Text: value}
	default:
		return dns.ResourceRecord{}, fmt.Errorf("%w: %s for %q", dns.ErrUnsupportedRecordType, t, owner)
	}
	return dns.NewRecord(owner, ttl, data), nil
}
