// Package server runs the UDP responder: it turns datagrams into parsed
// queries, asks a resolver for answers and writes the serialized response.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/resolvers"
)

// Sources reported in HandleResult.Source for non-answer outcomes.
const (
	SourceParseError = "parse-error"
	SourceNotQuery   = "not-a-query"
	SourceNoAnswer   = "no-answer"
	SourceServFail   = "servfail"
	SourceTimeout    = "timeout"
)

// QueryHandler processes one query datagram at a time through a resolver.
// It is safe for concurrent use if the resolver is.
type QueryHandler struct {
	Logger   *slog.Logger       // Optional logger for debug output
	Resolver resolvers.Resolver // Answers questions
	Stats    *DNSStats          // Optional counters
	Timeout  time.Duration      // Maximum time for resolution (default: 2s)
}

// HandleResult contains the outcome of query processing.
type HandleResult struct {
	ResponseBytes []byte      // Serialized response; nil means drop the datagram
	Source        string      // Resolver source or one of the Source* outcomes
	Answers       int         // Number of answer records in the response
	Parsed        dns.Message // Parsed request (if ParsedOK is true)
	ParsedOK      bool        // Whether the request was successfully parsed
}

// Handle processes a DNS request and returns a response.
//
// Processing steps:
//  1. Parse header and question; drop the datagram on failure
//  2. Drop datagrams that already carry the QR bit
//  3. Resolve; no answer still yields a NOERROR response with zero records
//  4. Any other failure yields SERVFAIL, never a partial answer
func (h *QueryHandler) Handle(ctx context.Context, transport string, src string, reqBytes []byte) HandleResult {
	start := time.Now()
	if h.Stats != nil {
		h.Stats.RecordQuery(transport)
		defer func() { h.Stats.RecordLatency(time.Since(start).Nanoseconds()) }()
	}

	parsed, err := dns.ParseQuery(reqBytes)
	if err != nil {
		h.drop(ctx, transport, src, len(reqBytes), err)
		return HandleResult{Source: SourceParseError}
	}
	if parsed.Header.IsResponse() {
		h.drop(ctx, transport, src, len(reqBytes), errors.New("QR bit set on inbound message"))
		return HandleResult{Source: SourceNotQuery, Parsed: parsed, ParsedOK: true}
	}

	res := h.respond(ctx, parsed)
	res.Parsed = parsed
	res.ParsedOK = true
	h.record(res)
	h.logRequest(ctx, transport, src, parsed, len(reqBytes), res)
	return res
}

// respond resolves the question and serializes the reply.
func (h *QueryHandler) respond(ctx context.Context, query dns.Message) HandleResult {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		result resolvers.Result
		err    error
	)
	if h.Resolver == nil {
		err = resolvers.ErrNoAnswer
	} else {
		result, err = h.Resolver.Resolve(ctx, query.Question)
	}

	switch {
	case err == nil:
	case errors.Is(err, resolvers.ErrNoAnswer):
		result = resolvers.Result{Source: SourceNoAnswer}
	case errors.Is(err, context.DeadlineExceeded):
		return h.servfail(query, SourceTimeout, err)
	default:
		return h.servfail(query, SourceServFail, err)
	}

	b, err := dns.NewResponse(query, result.Answers).Marshal()
	if err != nil {
		return h.servfail(query, SourceServFail, err)
	}
	return HandleResult{ResponseBytes: b, Source: result.Source, Answers: len(result.Answers)}
}

// servfail builds a SERVFAIL reply for query. If even that cannot be
// encoded the datagram is dropped.
func (h *QueryHandler) servfail(query dns.Message, source string, cause error) HandleResult {
	if h.Logger != nil {
		h.Logger.Warn("dns servfail", "qname", query.Question.Name.String(), "qtype", query.Question.Type.String(), "source", source, "err", cause)
	}
	b, err := dns.BuildErrorResponse(query, dns.RCodeServFail).Marshal()
	if err != nil {
		return HandleResult{Source: source}
	}
	return HandleResult{ResponseBytes: b, Source: source}
}

func (h *QueryHandler) record(res HandleResult) {
	if h.Stats == nil {
		return
	}
	switch {
	case res.Source == SourceServFail || res.Source == SourceTimeout:
		h.Stats.RecordError()
	case res.ResponseBytes == nil:
		h.Stats.RecordDropped()
	case res.Answers == 0:
		h.Stats.RecordNoAnswer()
	default:
		h.Stats.RecordAnswered()
	}
}

func (h *QueryHandler) drop(ctx context.Context, transport, src string, reqLen int, err error) {
	if h.Stats != nil {
		h.Stats.RecordDropped()
	}
	if h.Logger == nil || !h.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	h.Logger.Debug("dns drop", "transport", transport, "src", src, "bytes", reqLen, "err", err)
}

// logRequest logs DNS request details at debug level.
func (h *QueryHandler) logRequest(ctx context.Context, transport, src string, parsed dns.Message, reqLen int, res HandleResult) {
	if h.Logger == nil || !h.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	h.Logger.Debug(
		"dns request",
		"transport", transport,
		"src", src,
		"id", int(parsed.Header.ID),
		"qname", parsed.Question.Name.String(),
		"qtype", parsed.Question.Type.String(),
		"bytes", reqLen,
		"answers", res.Answers,
		"source", res.Source,
	)
}
