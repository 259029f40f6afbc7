// Package cluster lets a secondary MiniDNS take its records from a primary.
//
// The secondary pulls the primary's record set once, at startup, through the
// primary's management API (GET /api/v1/records). After that both nodes
// answer independently; there is no push and no live resync because the
// record table is immutable once built.
package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jroosing/minidns/internal/api/models"
	"github.com/jroosing/minidns/internal/config"
	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/zone"
)

// RecordsPath is the primary endpoint a secondary reads.
const RecordsPath = "/api/v1/records"

// maxResponseBytes bounds the record set accepted from a primary.
const maxResponseBytes = 32 << 20

// ErrBadRecordSet is returned when the primary's payload cannot be turned
// into zone entries.
var ErrBadRecordSet = errors.New("invalid record set from primary")

// Puller fetches the record set of a primary node.
type Puller struct {
	baseURL    string
	apiKey     string
	logger     *slog.Logger
	httpClient *http.Client
}

// NewPuller creates a puller for cfg. A missing or unparsable timeout falls
// back to 10s.
func NewPuller(cfg config.PrimaryConfig, logger *slog.Logger) (*Puller, error) {
	if cfg.URL == "" {
		return nil, errors.New("records.primary.url is required")
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Puller{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Pull fetches and converts the primary's records.
func (p *Puller) Pull(ctx context.Context) ([]zone.Entry, error) {
	start := time.Now()
	data, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull records from %s: %w", p.baseURL, err)
	}
	entries, err := toEntries(data)
	if err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Info("records pulled from primary",
			"primary", p.baseURL,
			"names", len(entries),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
	return entries, nil
}

func (p *Puller) fetch(ctx context.Context) (*models.RecordsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+RecordsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data models.RecordsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &data, nil
}

func toEntries(data *models.RecordsResponse) ([]zone.Entry, error) {
	entries := make([]zone.Entry, 0, len(data.Entries))
	for _, re := range data.Entries {
		e := zone.Entry{
			Name:    re.Name,
			TTL:     re.TTL,
			Records: make(map[dns.RecordClass]map[dns.RecordType]string),
		}
		for _, v := range re.Records {
			class, ok := dns.ParseRecordClass(v.Class)
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown class %q", ErrBadRecordSet, re.Name, v.Class)
			}
			rt, ok := dns.ParseRecordType(v.Type)
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown type %q", ErrBadRecordSet, re.Name, v.Type)
			}
			if e.Records[class] == nil {
				e.Records[class] = make(map[dns.RecordType]string)
			}
			e.Records[class][rt] = v.Value
		}
		entries = append(entries, e)
	}
	return entries, nil
}
