package contracts

import (
	"context"
	"time"

	"auditflow/domain/schedule"
)

// ScheduleRepository defines operations for recurrence rules and their
// materialized instances.
type ScheduleRepository interface {
	GetRule(ctx context.Context, ruleID string) (*schedule.ScheduledAudit, error)
	SaveRule(ctx context.Context, rule *schedule.ScheduledAudit) error
	ListActiveRules(ctx context.Context) ([]*schedule.ScheduledAudit, error)

	// ListInstances returns instances for the given rules, joined with the
	// completion state of any linked audit.
	ListInstances(ctx context.Context, ruleIDs []string) ([]*schedule.Instance, error)

	// CreateInstances materializes occurrence drafts as pending instances,
	// skipping drafts that collide with the (scheduled_audit_id, due_date)
	// uniqueness constraint. It returns the number of rows inserted.
	CreateInstances(ctx context.Context, drafts []schedule.InstanceDraft) (int, error)

	// MarkMissed transitions the given pending instances to missed.
	MarkMissed(ctx context.Context, instanceIDs []string) error

	// LinkAudit attaches a started audit to a pending instance.
	LinkAudit(ctx context.Context, instanceID, auditID string) error

	// CompleteInstance marks an instance completed once its linked audit
	// reaches the completed state.
	CompleteInstance(ctx context.Context, instanceID string, completedAt time.Time) error

	// FindInstanceByAudit returns the instance linked to an audit, or
	// ErrNotFound when the audit was started ad hoc.
	FindInstanceByAudit(ctx context.Context, auditID string) (*schedule.Instance, error)
}
