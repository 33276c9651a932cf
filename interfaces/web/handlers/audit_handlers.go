package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"auditflow/application"
	"auditflow/domain/audit"
)

// AuditHandlers exposes the audit execution pipeline over HTTP.
type AuditHandlers struct {
	auditService application.AuditService
}

// NewAuditHandlers creates audit handlers.
func NewAuditHandlers(auditService application.AuditService) *AuditHandlers {
	return &AuditHandlers{auditService: auditService}
}

type startAuditRequest struct {
	LocationID  string `json:"location_id"`
	TemplateID  string `json:"template_id"`
	InspectorID string `json:"inspector_id"`
	InstanceID  string `json:"instance_id,omitempty"`
}

// StartAudit creates a draft audit, optionally linked to a scheduled
// instance.
func (h *AuditHandlers) StartAudit(w http.ResponseWriter, r *http.Request) {
	var req startAuditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.LocationID == "" || req.TemplateID == "" || req.InspectorID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location_id, template_id and inspector_id are required"})
		return
	}

	a, err := h.auditService.StartAudit(r.Context(), req.LocationID, req.TemplateID, req.InspectorID, req.InstanceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetAudit returns an audit with its result set.
func (h *AuditHandlers) GetAudit(w http.ResponseWriter, r *http.Request) {
	a, err := h.auditService.GetAudit(r.Context(), chi.URLParam(r, "auditID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type recordResultRequest struct {
	ItemID    string   `json:"item_id"`
	Result    string   `json:"result"`
	Comment   string   `json:"comment,omitempty"`
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

// RecordResult stores a single item outcome for an in-flight audit.
func (h *AuditHandlers) RecordResult(w http.ResponseWriter, r *http.Request) {
	var req recordResultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result := audit.Result{
		ItemID:    req.ItemID,
		Value:     audit.ResultValue(req.Result),
		Comment:   req.Comment,
		PhotoURLs: req.PhotoURLs,
	}
	if !result.Value.IsValid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown result value %q", req.Result),
		})
		return
	}

	if err := h.auditService.RecordResult(r.Context(), chi.URLParam(r, "auditID"), result); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// CompleteAudit runs the scoring and action-generation pipeline.
func (h *AuditHandlers) CompleteAudit(w http.ResponseWriter, r *http.Request) {
	result, err := h.auditService.CompleteAudit(r.Context(), chi.URLParam(r, "auditID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"audit_id":        result.Audit.ID,
		"total_score":     result.Score.TotalScore,
		"max_score":       result.Score.MaxScore,
		"pass_percentage": result.Score.PassPercentage,
		"passed":          result.Score.Passed,
		"actions_created": len(result.ActionsCreated),
	})
}

// CancelAudit moves an audit to its cancelled terminal state.
func (h *AuditHandlers) CancelAudit(w http.ResponseWriter, r *http.Request) {
	if err := h.auditService.CancelAudit(r.Context(), chi.URLParam(r, "auditID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
