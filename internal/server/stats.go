package server

import (
	"sync/atomic"
)

// DNSStats collects DNS query statistics.
// All methods are safe for concurrent use.
type DNSStats struct {
	queriesTotal      atomic.Uint64
	queriesUDP        atomic.Uint64
	responsesAnswered atomic.Uint64
	responsesEmpty    atomic.Uint64
	responsesErr      atomic.Uint64
	dropped           atomic.Uint64
	latencyTotalNs    atomic.Uint64
}

// NewDNSStats creates a new DNS statistics collector.
func NewDNSStats() *DNSStats {
	return &DNSStats{}
}

// RecordQuery records an inbound datagram for the given transport.
func (s *DNSStats) RecordQuery(transport string) {
	s.queriesTotal.Add(1)
	if transport == "udp" {
		s.queriesUDP.Add(1)
	}
}

// RecordAnswered records a response carrying at least one answer.
func (s *DNSStats) RecordAnswered() {
	s.responsesAnswered.Add(1)
}

// RecordNoAnswer records a NOERROR response with zero answers.
func (s *DNSStats) RecordNoAnswer() {
	s.responsesEmpty.Add(1)
}

// RecordError records a SERVFAIL response.
func (s *DNSStats) RecordError() {
	s.responsesErr.Add(1)
}

// RecordDropped records a datagram that got no response.
func (s *DNSStats) RecordDropped() {
	s.dropped.Add(1)
}

// RecordLatency records handling latency in nanoseconds.
func (s *DNSStats) RecordLatency(ns int64) {
	if ns > 0 {
		s.latencyTotalNs.Add(uint64(ns))
	}
}

// DNSStatsSnapshot is a point-in-time snapshot of DNS server statistics.
type DNSStatsSnapshot struct {
	QueriesTotal      uint64
	QueriesUDP        uint64
	ResponsesAnswered uint64
	ResponsesNoAnswer uint64
	ResponsesErr      uint64
	Dropped           uint64
	AvgLatencyMs      float64
}

// Snapshot returns the current statistics.
func (s *DNSStats) Snapshot() DNSStatsSnapshot {
	total := s.queriesTotal.Load()
	latencyNs := s.latencyTotalNs.Load()

	avgLatencyMs := 0.0
	if total > 0 {
		avgLatencyMs = float64(latencyNs) / float64(total) / 1e6
	}

	return DNSStatsSnapshot{
		QueriesTotal:      total,
		QueriesUDP:        s.queriesUDP.Load(),
		ResponsesAnswered: s.responsesAnswered.Load(),
		ResponsesNoAnswer: s.responsesEmpty.Load(),
		ResponsesErr:      s.responsesErr.Load(),
		Dropped:           s.dropped.Load(),
		AvgLatencyMs:      avgLatencyMs,
	}
}
