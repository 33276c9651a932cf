package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"auditflow/application"
	"auditflow/domain/template"
)

// TemplateHandlers exposes checklist template management over HTTP.
type TemplateHandlers struct {
	templateService application.TemplateService
}

// NewTemplateHandlers creates template handlers.
func NewTemplateHandlers(templateService application.TemplateService) *TemplateHandlers {
	return &TemplateHandlers{templateService: templateService}
}

// ListTemplates returns all templates without their trees.
func (h *TemplateHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.ListTemplates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// GetTemplate returns a template with its full category/item tree.
func (h *TemplateHandlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.templateService.GetTemplate(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// SaveTemplate validates and persists a template graph.
func (h *TemplateHandlers) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl template.Template
	if err := decodeJSON(r, &tpl); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	saved, err := h.templateService.SaveTemplate(r.Context(), &tpl)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
