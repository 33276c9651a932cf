package events

import (
	"auditflow/domain/events"
	"auditflow/logging"
)

// NotificationEventHandlers observes audit lifecycle events and records them
// for operators. Outbound channels (email, chat webhooks) would hang off this
// type.
type NotificationEventHandlers struct {
	logger *logging.Logger
}

// NewNotificationEventHandlers creates event handlers for notifications
func NewNotificationEventHandlers(logger *logging.Logger) *NotificationEventHandlers {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationEventHandlers{
		logger: logger.WithComponent("notification_events"),
	}
}

// RegisterHandlers registers all notification event handlers with the event bus
func (h *NotificationEventHandlers) RegisterHandlers(eventBus *AuditEventBus) {
	eventBus.OnAuditCompleted(h.handleAuditCompleted)
	eventBus.OnActionsCreated(h.handleActionsCreated)
	eventBus.OnInstancesMissed(h.handleInstancesMissed)
}

// Event handler implementations

func (h *NotificationEventHandlers) handleAuditCompleted(event events.AuditCompletedEvent) {
	auditID := "unknown"
	passed := false
	if event.Audit != nil {
		auditID = event.Audit.ID
		passed = event.Audit.Passed
	}
	h.logger.Info("Handling audit completed event", "audit_id", auditID, "passed", passed)
}

func (h *NotificationEventHandlers) handleActionsCreated(event events.ActionsCreatedEvent) {
	h.logger.Info("Handling actions created event",
		"audit_id", event.AuditID,
		"action_count", len(event.Actions))
}

func (h *NotificationEventHandlers) handleInstancesMissed(event events.InstancesMissedEvent) {
	h.logger.Warn("Handling instances missed event",
		"instance_count", len(event.InstanceIDs))
}
