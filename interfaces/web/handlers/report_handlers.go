package handlers

import (
	"net/http"
	"time"

	"auditflow/application"
)

// ReportHandlers exposes aggregated audit statistics over HTTP.
type ReportHandlers struct {
	reportService application.ReportService
}

// NewReportHandlers creates report handlers.
func NewReportHandlers(reportService application.ReportService) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// sinceParam parses an optional ?since=YYYY-MM-DD filter, defaulting to the
// last 90 days.
func sinceParam(r *http.Request) time.Time {
	if raw := r.URL.Query().Get("since"); raw != "" {
		if t, err := time.Parse(time.DateOnly, raw); err == nil {
			return t
		}
	}
	return time.Now().AddDate(0, 0, -90)
}

// PassRate returns pass/fail aggregates for the filter.
func (h *ReportHandlers) PassRate(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.PassRate(r.Context(),
		r.URL.Query().Get("location_id"),
		r.URL.Query().Get("template_id"),
		sinceParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ScoreTrend returns monthly score averages for the filter.
func (h *ReportHandlers) ScoreTrend(w http.ResponseWriter, r *http.Request) {
	points, err := h.reportService.ScoreTrend(r.Context(),
		r.URL.Query().Get("location_id"),
		r.URL.Query().Get("template_id"),
		sinceParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// BenchmarkLocations compares locations for a template.
func (h *ReportHandlers) BenchmarkLocations(w http.ResponseWriter, r *http.Request) {
	benchmarks, err := h.reportService.BenchmarkLocations(r.Context(),
		r.URL.Query().Get("template_id"),
		sinceParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, benchmarks)
}
