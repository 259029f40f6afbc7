package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/minidns/internal/api/models"
	"github.com/shirou/gopsutil/v3/process"
)

// Health godoc
// @Summary Health check
// @Description Returns server health, including the record store when configured
// @Tags system
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
		return
	}

	dbStatus := &models.DatabaseStatus{Status: "ok", SchemaVersion: h.db.SchemaVersion()}
	if err := h.db.Health(c.Request.Context()); err != nil {
		dbStatus.Status = "unavailable"
		dbStatus.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "degraded", Database: dbStatus})
		return
	}
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Database: dbStatus})
}

// Stats godoc
// @Summary Server statistics
// @Description Returns runtime statistics including memory, goroutines, and DNS metrics
// @Tags system
// @Produce json
// @Success 200 {object} models.ServerStatsResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)
	table, _ := h.records()

	resp := models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		GoRoutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(m.Alloc) / 1024 / 1024,
		NumCPU:        runtime.NumCPU(),
		Process:       h.processStats(),
		Records:       table.Len(),
	}

	if fn := h.GetDNSStatsFunc(); fn != nil {
		s := fn()
		resp.DNSStats = models.DNSStatsResponse{
			QueriesTotal:      s.QueriesTotal,
			QueriesUDP:        s.QueriesUDP,
			ResponsesAnswered: s.ResponsesAnswered,
			ResponsesNoAnswer: s.ResponsesNoAnswer,
			ResponsesErr:      s.ResponsesErr,
			Dropped:           s.Dropped,
			AvgLatencyMs:      s.AvgLatencyMs,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// processStats reads RSS, CPU and thread count for this process. Fields the
// platform cannot report stay zero; nil means the process was not found.
func (h *Handler) processStats() *models.ProcessStats {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		if h.logger != nil {
			h.logger.Debug("process stats unavailable", "err", err)
		}
		return nil
	}

	out := &models.ProcessStats{}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		out.RSSMB = float64(mem.RSS) / 1024 / 1024
	}
	if cpu, err := p.CPUPercent(); err == nil {
		out.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		out.NumThreads = n
	}
	return out
}
