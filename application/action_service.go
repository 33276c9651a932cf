package application

import (
	"context"
	"fmt"
	"time"

	"auditflow/domain/action"
	"auditflow/domain/contracts"
	"auditflow/logging"
)

// ActionService drives the corrective-action response/verification workflow.
type ActionService interface {
	GetAction(ctx context.Context, actionID string) (*action.Action, error)
	ListOpenActions(ctx context.Context, locationID string) ([]*action.Action, error)
	ListActionsForAudit(ctx context.Context, auditID string) ([]*action.Action, error)
	StartAction(ctx context.Context, actionID string) error
	SubmitResponse(ctx context.Context, actionID, text string, photoURLs []string) error
	VerifyAction(ctx context.Context, actionID, notes string) error
	RejectAction(ctx context.Context, actionID, notes string) error
}

// ActionServiceImpl is the production implementation of ActionService.
type ActionServiceImpl struct {
	actions contracts.ActionRepository
	logger  *logging.Logger
	now     func() time.Time
}

// NewActionService creates a new action service.
func NewActionService(actions contracts.ActionRepository) ActionService {
	return &ActionServiceImpl{
		actions: actions,
		logger:  logging.Default().WithComponent("action_service"),
		now:     time.Now,
	}
}

// GetAction loads a single action.
func (s *ActionServiceImpl) GetAction(ctx context.Context, actionID string) (*action.Action, error) {
	return s.actions.GetByID(ctx, actionID)
}

// ListOpenActions returns non-terminal actions, optionally scoped to a location.
func (s *ActionServiceImpl) ListOpenActions(ctx context.Context, locationID string) ([]*action.Action, error) {
	return s.actions.ListOpen(ctx, locationID)
}

// ListActionsForAudit returns all actions spawned by an audit.
func (s *ActionServiceImpl) ListActionsForAudit(ctx context.Context, auditID string) ([]*action.Action, error) {
	return s.actions.ListByAudit(ctx, auditID)
}

// StartAction marks an action as being worked on.
func (s *ActionServiceImpl) StartAction(ctx context.Context, actionID string) error {
	return s.mutate(ctx, actionID, func(a *action.Action) error {
		return a.Start()
	})
}

// SubmitResponse records the respondent's fix. Photo and comment
// requirements copied from the source checklist item are enforced here.
func (s *ActionServiceImpl) SubmitResponse(ctx context.Context, actionID, text string, photoURLs []string) error {
	return s.mutate(ctx, actionID, func(a *action.Action) error {
		if a.RequiresCommentOnFail && text == "" {
			return fmt.Errorf("action %s requires a response comment", a.ID)
		}
		return a.SubmitResponse(text, photoURLs, s.now())
	})
}

// VerifyAction accepts a submitted fix.
func (s *ActionServiceImpl) VerifyAction(ctx context.Context, actionID, notes string) error {
	return s.mutate(ctx, actionID, func(a *action.Action) error {
		return a.Verify(notes, s.now())
	})
}

// RejectAction sends a submitted fix back. The action ends in its terminal
// rejected state.
func (s *ActionServiceImpl) RejectAction(ctx context.Context, actionID, notes string) error {
	return s.mutate(ctx, actionID, func(a *action.Action) error {
		return a.Reject(notes)
	})
}

// mutate loads an action, applies a domain transition, and persists it.
func (s *ActionServiceImpl) mutate(ctx context.Context, actionID string, fn func(*action.Action) error) error {
	a, err := s.actions.GetByID(ctx, actionID)
	if err != nil {
		return err
	}
	if err := fn(a); err != nil {
		return err
	}
	if err := s.actions.Update(ctx, a); err != nil {
		return err
	}
	s.logger.Info("Action updated", "action_id", a.ID, "status", a.Status)
	return nil
}
