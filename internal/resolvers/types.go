// Package resolvers maps a parsed DNS question to answer records.
//
// Resolution Steps:
//
//  1. Only class IN is served; any other class yields no answer.
//  2. Direct lookup of (name, class, type) in the static table.
//  3. For A and AAAA questions without a direct match, a single CNAME hop:
//     the alias's CNAME record is answered first, then the target's record
//     of the asked type if the table has one.
//
// Every record carries the TTL of the entry that owns it, so a chased
// answer may mix the alias's TTL with the target's.
//
// Resolvers hold no per-query state and are safe for concurrent use.
package resolvers

import (
	"context"
	"errors"

	"github.com/jroosing/minidns/internal/dns"
)

// ErrNoAnswer means resolution found nothing to answer with. It is not a
// failure: the caller replies with zero answer records.
var ErrNoAnswer = errors.New("no answer")

// Result holds the outcome of a resolution.
type Result struct {
	Answers []dns.ResourceRecord // In answer-section order
	Source  string               // Where the answer came from (e.g. "static", "static-cname")
}

// Resolver is the interface for resolution strategies.
type Resolver interface {
	// Resolve returns the answer records for q, or ErrNoAnswer.
	Resolve(ctx context.Context, q dns.Question) (Result, error)

	// Close releases any resources held by the resolver.
	Close() error
}
