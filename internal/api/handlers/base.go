// Package handlers implements the REST API endpoint handlers for MiniDNS.
//
// REST API Endpoints:
//
// System:
//   - GET /api/v1/health - Health check, including the record store if configured
//   - GET /api/v1/stats - Uptime, process resources and DNS counters
//
// Records (read-only):
//   - GET /api/v1/records - All configured names and their values
//   - GET /api/v1/records/:name - One configured name
//   - GET /api/v1/resolve?name=&type= - What the responder would answer
//
// Authentication:
//
// When api.api_key is set every endpoint except /health requires the
// X-API-Key header.
package handlers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jroosing/minidns/internal/config"
	"github.com/jroosing/minidns/internal/database"
	"github.com/jroosing/minidns/internal/resolvers"
	"github.com/jroosing/minidns/internal/zone"
)

// DNSStatsSnapshot contains a point-in-time snapshot of DNS statistics.
type DNSStatsSnapshot struct {
	QueriesTotal      uint64
	QueriesUDP        uint64
	ResponsesAnswered uint64
	ResponsesNoAnswer uint64
	ResponsesErr      uint64
	Dropped           uint64
	AvgLatencyMs      float64
}

// DNSStatsFunc is a function that returns DNS statistics.
type DNSStatsFunc func() DNSStatsSnapshot

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	logger    *slog.Logger
	startTime time.Time

	// Runtime components (set after the record table is loaded)
	table        *zone.Table
	resolver     resolvers.Resolver
	dnsStatsFunc DNSStatsFunc
	mu           sync.RWMutex
}

// New creates a new Handler. db may be nil when no record store is configured.
func New(cfg *config.Config, db *database.DB, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
}

// DB returns the database connection for handlers that need it.
func (h *Handler) DB() *database.DB {
	return h.db
}

// SetRecords publishes the table and the resolver that answers from it.
func (h *Handler) SetRecords(table *zone.Table, resolver resolvers.Resolver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.table = table
	h.resolver = resolver
}

func (h *Handler) records() (*zone.Table, resolvers.Resolver) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.table, h.resolver
}

// SetDNSStatsFunc sets the function to retrieve DNS statistics.
func (h *Handler) SetDNSStatsFunc(fn DNSStatsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dnsStatsFunc = fn
}

// GetDNSStatsFunc retrieves the DNS statistics function.
func (h *Handler) GetDNSStatsFunc() DNSStatsFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dnsStatsFunc
}
