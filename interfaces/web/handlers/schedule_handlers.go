package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"auditflow/application"
	"auditflow/domain/schedule"
)

// ScheduleHandlers exposes recurrence rules and reconciliation over HTTP.
type ScheduleHandlers struct {
	scheduleService application.ScheduleService
}

// NewScheduleHandlers creates schedule handlers.
func NewScheduleHandlers(scheduleService application.ScheduleService) *ScheduleHandlers {
	return &ScheduleHandlers{scheduleService: scheduleService}
}

type createScheduleRequest struct {
	LocationID         string `json:"location_id"`
	TemplateID         string `json:"template_id"`
	InspectorID        string `json:"inspector_id,omitempty"`
	Cadence            string `json:"cadence"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date,omitempty"`
	DayOfWeek          int    `json:"day_of_week,omitempty"`
	DayOfMonth         int    `json:"day_of_month,omitempty"`
	TimeWindowDays     int    `json:"time_window_days"`
	ReminderDaysBefore int    `json:"reminder_days_before,omitempty"`
	NotifyOnMissed     bool   `json:"notify_on_missed,omitempty"`
}

// CreateSchedule validates and persists a new recurrence rule.
func (h *ScheduleHandlers) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	rule := &schedule.ScheduledAudit{
		LocationID:         req.LocationID,
		TemplateID:         req.TemplateID,
		InspectorID:        req.InspectorID,
		Cadence:            schedule.Cadence(req.Cadence),
		StartDate:          startDate,
		DayOfWeek:          req.DayOfWeek,
		DayOfMonth:         req.DayOfMonth,
		TimeWindowDays:     req.TimeWindowDays,
		ReminderDaysBefore: req.ReminderDaysBefore,
		NotifyOnMissed:     req.NotifyOnMissed,
		Active:             true,
	}
	if req.EndDate != "" {
		endDate, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		rule.EndDate = &endDate
	}

	created, err := h.scheduleService.CreateSchedule(r.Context(), rule)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetSchedule returns a single recurrence rule.
func (h *ScheduleHandlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.scheduleService.GetSchedule(r.Context(), chi.URLParam(r, "ruleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// PreviewOccurrences returns the due dates a rule would produce in a range.
func (h *ScheduleHandlers) PreviewOccurrences(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.DateOnly, r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(time.DateOnly, r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
		return
	}

	dates, err := h.scheduleService.PreviewOccurrences(r.Context(), chi.URLParam(r, "ruleID"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format(time.DateOnly)
	}
	writeJSON(w, http.StatusOK, map[string]any{"occurrences": formatted})
}

// Reconcile triggers an immediate reconciliation pass.
func (h *ScheduleHandlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := h.scheduleService.RunReconciliation(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	invalid := make([]string, len(summary.InvalidRules))
	for i, ruleErr := range summary.InvalidRules {
		invalid[i] = ruleErr.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rules_processed":   summary.RulesProcessed,
		"instances_created": summary.InstancesCreated,
		"instances_missed":  summary.InstancesMissed,
		"invalid_rules":     invalid,
	})
}
