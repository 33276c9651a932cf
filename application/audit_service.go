package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"auditflow/domain/action"
	"auditflow/domain/audit"
	"auditflow/domain/contracts"
	domainevents "auditflow/domain/events"
	"auditflow/logging"
	"auditflow/platform/events"

	"github.com/google/uuid"
)

// CompletionResult summarizes what completing an audit produced.
type CompletionResult struct {
	Audit          *audit.Audit
	Score          audit.Score
	ActionsCreated []*action.Action
}

// AuditService defines the audit execution pipeline used by handlers.
type AuditService interface {
	StartAudit(ctx context.Context, locationID, templateID, inspectorID, instanceID string) (*audit.Audit, error)
	GetAudit(ctx context.Context, auditID string) (*audit.Audit, error)
	RecordResult(ctx context.Context, auditID string, result audit.Result) error
	CompleteAudit(ctx context.Context, auditID string) (*CompletionResult, error)
	CancelAudit(ctx context.Context, auditID string) error
}

// AuditServiceImpl is the production implementation of AuditService.
type AuditServiceImpl struct {
	audits    contracts.AuditRepository
	templates contracts.TemplateRepository
	actions   contracts.ActionRepository
	schedules contracts.ScheduleRepository
	factory   *action.Factory
	eventBus  *events.AuditEventBus
	logger    *logging.Logger
	now       func() time.Time
}

// NewAuditService creates a new audit service.
func NewAuditService(
	audits contracts.AuditRepository,
	templates contracts.TemplateRepository,
	actions contracts.ActionRepository,
	schedules contracts.ScheduleRepository,
	eventBus *events.AuditEventBus,
) AuditService {
	return &AuditServiceImpl{
		audits:    audits,
		templates: templates,
		actions:   actions,
		schedules: schedules,
		factory:   action.NewFactory(),
		eventBus:  eventBus,
		logger:    logging.Default().WithComponent("audit_service"),
		now:       time.Now,
	}
}

// StartAudit creates a draft audit, optionally linked to a scheduled
// instance.
func (s *AuditServiceImpl) StartAudit(ctx context.Context, locationID, templateID, inspectorID, instanceID string) (*audit.Audit, error) {
	if _, err := s.templates.GetByID(ctx, templateID); err != nil {
		return nil, fmt.Errorf("load template %s: %w", templateID, err)
	}

	a := audit.NewAudit(uuid.NewString(), locationID, templateID, inspectorID, s.now())
	if err := s.audits.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}

	if instanceID != "" {
		if err := s.schedules.LinkAudit(ctx, instanceID, a.ID); err != nil {
			s.logger.AuditError("Failed to link audit to scheduled instance", err, a.ID,
				slog.String("instance_id", instanceID))
		}
	}

	s.logger.Audit("Audit started", a.ID)
	return a, nil
}

// GetAudit loads an audit with its result set.
func (s *AuditServiceImpl) GetAudit(ctx context.Context, auditID string) (*audit.Audit, error) {
	return s.audits.GetByID(ctx, auditID)
}

// RecordResult validates and persists a single item result.
func (s *AuditServiceImpl) RecordResult(ctx context.Context, auditID string, result audit.Result) error {
	a, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return err
	}

	// The aggregate enforces the terminal-state invariant.
	if err := a.RecordResult(result); err != nil {
		return err
	}

	return s.audits.SaveResult(ctx, auditID, result)
}

// CompleteAudit runs the scoring and action-generation pipeline: compute the
// weighted score, complete the aggregate, generate corrective actions for
// flagged failures, mark any linked scheduled instance completed, and
// publish events.
//
// Re-running completion for an already-completed audit fails the invariant
// check before any store mutation, and action creation suppresses duplicates
// both in memory and via the store's uniqueness constraint.
func (s *AuditServiceImpl) CompleteAudit(ctx context.Context, auditID string) (*CompletionResult, error) {
	a, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.templates.GetByID(ctx, a.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", a.TemplateID, err)
	}

	score := audit.ComputeScore(tpl, a.Results)
	completedAt := s.now()
	if err := a.Complete(score, completedAt); err != nil {
		return nil, err
	}

	if err := s.audits.Complete(ctx, a); err != nil {
		return nil, fmt.Errorf("persist audit completion: %w", err)
	}

	existing, err := s.actions.ListByAudit(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("list existing actions: %w", err)
	}
	existingItemIDs := make(map[string]bool, len(existing))
	for _, act := range existing {
		existingItemIDs[act.ItemID] = true
	}

	drafts := s.factory.BuildActions(a, score.FailedItemsNeedingAction, existingItemIDs)
	if len(drafts) > 0 {
		inserted, err := s.actions.CreateBatch(ctx, drafts)
		if err != nil {
			return nil, fmt.Errorf("create actions: %w", err)
		}
		if inserted < len(drafts) {
			s.logger.Audit("Duplicate actions suppressed by store", auditID)
		}
	}

	s.completeLinkedInstance(ctx, auditID, completedAt)

	s.logger.Audit("Audit completed", a.ID)
	s.eventBus.PublishAuditCompleted(domainevents.AuditCompletedEvent{Audit: a, Timestamp: completedAt})
	if len(drafts) > 0 {
		s.eventBus.PublishActionsCreated(domainevents.ActionsCreatedEvent{
			AuditID:   a.ID,
			Actions:   drafts,
			Timestamp: completedAt,
		})
	}

	return &CompletionResult{Audit: a, Score: score, ActionsCreated: drafts}, nil
}

// CancelAudit moves an audit to its cancelled terminal state.
func (s *AuditServiceImpl) CancelAudit(ctx context.Context, auditID string) error {
	a, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return err
	}
	if err := a.Cancel(); err != nil {
		return err
	}
	if err := s.audits.Cancel(ctx, auditID); err != nil {
		return err
	}
	s.logger.Audit("Audit cancelled", auditID)
	return nil
}

// completeLinkedInstance marks the scheduled instance backing this audit as
// completed, if one exists. Ad hoc audits have no instance.
func (s *AuditServiceImpl) completeLinkedInstance(ctx context.Context, auditID string, completedAt time.Time) {
	inst, err := s.schedules.FindInstanceByAudit(ctx, auditID)
	if err != nil {
		if !errors.Is(err, contracts.ErrNotFound) {
			s.logger.AuditError("Failed to look up scheduled instance", err, auditID)
		}
		return
	}
	if err := s.schedules.CompleteInstance(ctx, inst.ID, completedAt); err != nil {
		s.logger.AuditError("Failed to complete scheduled instance", err, auditID)
	}
}
