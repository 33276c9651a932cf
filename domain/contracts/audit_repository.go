package contracts

import (
	"context"
	"time"

	"auditflow/domain/audit"
)

// CompletedAuditSummary is a projection of a completed audit used by the
// reporting layer.
type CompletedAuditSummary struct {
	AuditID     string
	LocationID  string
	TemplateID  string
	PassPct     int
	Passed      bool
	CompletedAt time.Time
}

// AuditRepository defines operations for audit aggregates.
type AuditRepository interface {
	GetByID(ctx context.Context, auditID string) (*audit.Audit, error)
	Create(ctx context.Context, a *audit.Audit) error

	// SaveResult upserts a single item result for an in-flight audit.
	SaveResult(ctx context.Context, auditID string, result audit.Result) error

	// Complete persists the computed score fields and the terminal status.
	Complete(ctx context.Context, a *audit.Audit) error

	// Cancel persists the cancelled terminal status.
	Cancel(ctx context.Context, auditID string) error

	// ListCompleted returns completed-audit summaries for reporting,
	// filtered by optional location and template IDs and bounded by time.
	ListCompleted(ctx context.Context, locationID, templateID string, since time.Time) ([]*CompletedAuditSummary, error)
}
