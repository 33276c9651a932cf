package events

import (
	"sync"

	"auditflow/domain/events"
	"auditflow/logging"
)

// AuditEventBus provides type-safe event publishing and subscription for
// audit lifecycle events.
type AuditEventBus struct {
	mu     sync.RWMutex
	logger *logging.Logger

	auditCompletedHandlers  []func(events.AuditCompletedEvent)
	actionsCreatedHandlers  []func(events.ActionsCreatedEvent)
	instancesMissedHandlers []func(events.InstancesMissedEvent)
}

// NewAuditEventBus creates a new typed audit event bus
func NewAuditEventBus() *AuditEventBus {
	return &AuditEventBus{
		logger:                  logging.Default().WithComponent("audit_event_bus"),
		auditCompletedHandlers:  make([]func(events.AuditCompletedEvent), 0),
		actionsCreatedHandlers:  make([]func(events.ActionsCreatedEvent), 0),
		instancesMissedHandlers: make([]func(events.InstancesMissedEvent), 0),
	}
}

// Subscribe methods for each event type

func (bus *AuditEventBus) OnAuditCompleted(handler func(events.AuditCompletedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.auditCompletedHandlers = append(bus.auditCompletedHandlers, handler)
}

func (bus *AuditEventBus) OnActionsCreated(handler func(events.ActionsCreatedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.actionsCreatedHandlers = append(bus.actionsCreatedHandlers, handler)
}

func (bus *AuditEventBus) OnInstancesMissed(handler func(events.InstancesMissedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.instancesMissedHandlers = append(bus.instancesMissedHandlers, handler)
}

// Publish methods for each event type. Handlers run asynchronously so a slow
// subscriber never blocks the publisher.

func (bus *AuditEventBus) PublishAuditCompleted(event events.AuditCompletedEvent) {
	bus.mu.RLock()
	handlers := make([]func(events.AuditCompletedEvent), len(bus.auditCompletedHandlers))
	copy(handlers, bus.auditCompletedHandlers)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		go func(h func(events.AuditCompletedEvent)) {
			defer func() {
				if r := recover(); r != nil {
					bus.logger.Error("Event handler panicked in AuditCompleted",
						"audit_id", event.Audit.ID,
						"panic", r)
				}
			}()
			h(event)
		}(handler)
	}
}

func (bus *AuditEventBus) PublishActionsCreated(event events.ActionsCreatedEvent) {
	bus.mu.RLock()
	handlers := make([]func(events.ActionsCreatedEvent), len(bus.actionsCreatedHandlers))
	copy(handlers, bus.actionsCreatedHandlers)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		go func(h func(events.ActionsCreatedEvent)) {
			defer func() {
				if r := recover(); r != nil {
					bus.logger.Error("Event handler panicked in ActionsCreated",
						"audit_id", event.AuditID,
						"panic", r)
				}
			}()
			h(event)
		}(handler)
	}
}

func (bus *AuditEventBus) PublishInstancesMissed(event events.InstancesMissedEvent) {
	bus.mu.RLock()
	handlers := make([]func(events.InstancesMissedEvent), len(bus.instancesMissedHandlers))
	copy(handlers, bus.instancesMissedHandlers)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		go func(h func(events.InstancesMissedEvent)) {
			defer func() {
				if r := recover(); r != nil {
					bus.logger.Error("Event handler panicked in InstancesMissed",
						"instance_count", len(event.InstanceIDs),
						"panic", r)
				}
			}()
			h(event)
		}(handler)
	}
}
