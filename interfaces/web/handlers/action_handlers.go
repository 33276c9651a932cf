package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"auditflow/application"
)

// ActionHandlers exposes the corrective-action workflow over HTTP.
type ActionHandlers struct {
	actionService application.ActionService
}

// NewActionHandlers creates action handlers.
func NewActionHandlers(actionService application.ActionService) *ActionHandlers {
	return &ActionHandlers{actionService: actionService}
}

// GetAction returns a single action.
func (h *ActionHandlers) GetAction(w http.ResponseWriter, r *http.Request) {
	a, err := h.actionService.GetAction(r.Context(), chi.URLParam(r, "actionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListOpenActions returns open actions, optionally filtered by location.
func (h *ActionHandlers) ListOpenActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.actionService.ListOpenActions(r.Context(), r.URL.Query().Get("location_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

// ListAuditActions returns actions spawned by an audit.
func (h *ActionHandlers) ListAuditActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.actionService.ListActionsForAudit(r.Context(), chi.URLParam(r, "auditID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

// StartAction marks an action as in progress.
func (h *ActionHandlers) StartAction(w http.ResponseWriter, r *http.Request) {
	if err := h.actionService.StartAction(r.Context(), chi.URLParam(r, "actionID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "in_progress"})
}

type respondRequest struct {
	Text      string   `json:"text"`
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

// SubmitResponse records the respondent's fix.
func (h *ActionHandlers) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.actionService.SubmitResponse(r.Context(), chi.URLParam(r, "actionID"), req.Text, req.PhotoURLs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

type verificationRequest struct {
	Notes string `json:"notes,omitempty"`
}

// VerifyAction accepts a submitted fix.
func (h *ActionHandlers) VerifyAction(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.actionService.VerifyAction(r.Context(), chi.URLParam(r, "actionID"), req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// RejectAction sends a submitted fix back, terminally.
func (h *ActionHandlers) RejectAction(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.actionService.RejectAction(r.Context(), chi.URLParam(r, "actionID"), req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
