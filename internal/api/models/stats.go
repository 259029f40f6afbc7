package models

import "time"

// ServerStatsResponse contains server runtime statistics.
type ServerStatsResponse struct {
	Uptime        string           `json:"uptime"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     time.Time        `json:"start_time"`
	GoRoutines    int              `json:"goroutines"`
	MemoryAllocMB float64          `json:"memory_alloc_mb"`
	NumCPU        int              `json:"num_cpu"`
	Process       *ProcessStats    `json:"process,omitempty"`
	Records       int              `json:"records"`
	DNSStats      DNSStatsResponse `json:"dns"`
}

// ProcessStats is the OS view of the server process.
type ProcessStats struct {
	RSSMB      float64 `json:"rss_mb"`
	CPUPercent float64 `json:"cpu_percent"`
	NumThreads int32   `json:"num_threads"`
}

// DNSStatsResponse contains DNS query statistics.
type DNSStatsResponse struct {
	QueriesTotal      uint64  `json:"queries_total"`
	QueriesUDP        uint64  `json:"queries_udp"`
	ResponsesAnswered uint64  `json:"responses_answered"`
	ResponsesNoAnswer uint64  `json:"responses_no_answer"`
	ResponsesErr      uint64  `json:"responses_error"`
	Dropped           uint64  `json:"dropped"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
}
