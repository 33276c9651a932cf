package events

import (
	"time"

	"auditflow/domain/action"
	"auditflow/domain/audit"
)

// AuditCompletedEvent represents an audit that reached its completed state.
type AuditCompletedEvent struct {
	Audit     *audit.Audit
	Timestamp time.Time
}

// ActionsCreatedEvent represents corrective actions generated from an
// audit's failed items.
type ActionsCreatedEvent struct {
	AuditID   string
	Actions   []*action.Action
	Timestamp time.Time
}

// InstancesMissedEvent represents scheduled-audit instances whose time
// window elapsed without a completed audit.
type InstancesMissedEvent struct {
	InstanceIDs []string
	Timestamp   time.Time
}
