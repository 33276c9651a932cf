package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"auditflow/domain/audit"
	"auditflow/domain/contracts"
	"auditflow/domain/schedule"
	"auditflow/domain/template"
	"auditflow/logging"
)

// writeJSON renders a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var invariant *audit.InvariantViolation
	var validation *template.ValidationError
	var ruleErr *schedule.RuleError

	switch {
	case errors.Is(err, contracts.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, contracts.ErrConflict):
		status = http.StatusConflict
	case errors.As(err, &invariant):
		status = http.StatusConflict
	case errors.As(err, &validation), errors.As(err, &ruleErr):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeJSON parses a request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
