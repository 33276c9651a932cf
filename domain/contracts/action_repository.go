package contracts

import (
	"context"

	"auditflow/domain/action"
)

// ActionRepository defines operations for corrective actions.
type ActionRepository interface {
	GetByID(ctx context.Context, actionID string) (*action.Action, error)

	// CreateBatch inserts actions, silently skipping any that collide with
	// the (audit_id, item_id) uniqueness constraint. It returns the number
	// of rows actually inserted so callers can detect suppressed
	// duplicates.
	CreateBatch(ctx context.Context, actions []*action.Action) (int, error)

	// ListByAudit returns all actions spawned by an audit.
	ListByAudit(ctx context.Context, auditID string) ([]*action.Action, error)

	// ListOpen returns non-terminal actions, optionally filtered by location.
	ListOpen(ctx context.Context, locationID string) ([]*action.Action, error)

	// Update persists workflow state changes (status, response, verification).
	Update(ctx context.Context, a *action.Action) error
}
