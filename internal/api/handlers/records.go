package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/minidns/internal/api/models"
	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/resolvers"
	"github.com/jroosing/minidns/internal/zone"
)

// ListRecords godoc
// @Summary List configured records
// @Description Returns every configured name with its TTL and values
// @Tags records
// @Produce json
// @Success 200 {object} models.RecordsResponse
// @Security ApiKeyAuth
// @Router /records [get]
func (h *Handler) ListRecords(c *gin.Context) {
	table, _ := h.records()
	entries := table.Entries()

	resp := models.RecordsResponse{Count: len(entries), Entries: make([]models.RecordEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRecord godoc
// @Summary Get one configured name
// @Description Returns the TTL and values configured for a name (case-insensitive)
// @Tags records
// @Produce json
// @Param name path string true "Domain name"
// @Success 200 {object} models.RecordEntryResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /records/{name} [get]
func (h *Handler) GetRecord(c *gin.Context) {
	name := c.Param("name")
	table, _ := h.records()

	e, ok := table.Entry(name)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("no records for %q", name)})
		return
	}
	c.JSON(http.StatusOK, toEntryResponse(e))
}

// Resolve godoc
// @Summary Resolve a name
// @Description Runs the resolution engine for an IN question and returns the answers the responder would send
// @Tags records
// @Produce json
// @Param name query string true "Domain name"
// @Param type query string false "Record type (default A)"
// @Success 200 {object} models.ResolveResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /resolve [get]
func (h *Handler) Resolve(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}
	qtype := dns.TypeA
	if raw := c.Query("type"); raw != "" {
		t, ok := dns.ParseRecordType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("unknown record type %q", raw)})
			return
		}
		qtype = t
	}

	_, resolver := h.records()
	if resolver == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "resolver not ready"})
		return
	}

	q := dns.NewQuestion(strings.TrimSuffix(name, "."), qtype, dns.ClassIN)
	resp := models.ResolveResponse{
		Name:    q.Name.String(),
		Type:    qtype.String(),
		RCode:   "NOERROR",
		Answers: []models.AnswerResponse{},
	}

	result, err := resolver.Resolve(c.Request.Context(), q)
	switch {
	case err == nil:
		resp.Source = result.Source
		for _, rr := range result.Answers {
			resp.Answers = append(resp.Answers, models.AnswerResponse{
				Name: rr.Name.String(),
				Type: rr.Type().String(),
				TTL:  rr.TTL,
				Data: fmt.Sprint(rr.Data),
			})
		}
	case errors.Is(err, resolvers.ErrNoAnswer):
	default:
		resp.RCode = "SERVFAIL"
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func toEntryResponse(e zone.Entry) models.RecordEntryResponse {
	out := models.RecordEntryResponse{Name: e.Name, TTL: e.TTL, Records: make([]models.RecordValue, 0, e.Count())}
	for class, byType := range e.Records {
		for t, v := range byType {
			out.Records = append(out.Records, models.RecordValue{Class: class.String(), Type: t.String(), Value: v})
		}
	}
	sort.Slice(out.Records, func(i, j int) bool {
		a, b := out.Records[i], out.Records[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Type < b.Type
	})
	return out
}
