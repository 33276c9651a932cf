// Package action contains corrective-action records and the factory that
// generates them from failed audit items.
package action

import (
	"fmt"
	"time"

	"auditflow/domain/template"
)

// Status represents the lifecycle state of a corrective action.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusVerified   Status = "verified"
	StatusRejected   Status = "rejected"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed.
// Rejected is terminal: there is no reopen path back to pending.
func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// CanTransitionTo checks if the action can move to the target status.
//
// Valid transitions:
//   - pending -> in_progress, completed
//   - in_progress -> completed
//   - completed -> verified, rejected
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCompleted
	case StatusInProgress:
		return target == StatusCompleted
	case StatusCompleted:
		return target == StatusVerified || target == StatusRejected
	}
	return false
}

// Action is a corrective task spawned by a failed checklist item (or created
// manually). It carries the response/verification workflow state.
type Action struct {
	ID          string
	AuditID     string
	ItemID      string // Source checklist item; empty for manual actions
	LocationID  string
	Title       string
	Description string
	Status      Status
	Urgency     template.Urgency
	Deadline    time.Time

	// Flags copied forward from the checklist item for the response
	// workflow to enforce. The factory does not enforce them itself.
	RequiresPhoto         bool
	RequiresCommentOnFail bool

	ResponseText      string
	ResponsePhotoURLs []string
	VerificationNotes string

	CreatedAt   time.Time
	CompletedAt *time.Time
	VerifiedAt  *time.Time
}

// transition validates and applies a status change.
func (a *Action) transition(op string, target Status) error {
	if !a.Status.CanTransitionTo(target) {
		return fmt.Errorf("%s: cannot transition action %s from %s to %s", op, a.ID, a.Status, target)
	}
	a.Status = target
	return nil
}

// Start marks the action as being worked on.
func (a *Action) Start() error {
	return a.transition("Start", StatusInProgress)
}

// SubmitResponse records the respondent's fix and moves the action to
// completed, awaiting verification.
func (a *Action) SubmitResponse(text string, photoURLs []string, now time.Time) error {
	if a.RequiresPhoto && len(photoURLs) == 0 {
		return fmt.Errorf("SubmitResponse: action %s requires at least one response photo", a.ID)
	}
	if err := a.transition("SubmitResponse", StatusCompleted); err != nil {
		return err
	}
	a.ResponseText = text
	a.ResponsePhotoURLs = photoURLs
	a.CompletedAt = &now
	return nil
}

// Verify accepts the submitted fix.
func (a *Action) Verify(notes string, now time.Time) error {
	if err := a.transition("Verify", StatusVerified); err != nil {
		return err
	}
	a.VerificationNotes = notes
	a.VerifiedAt = &now
	return nil
}

// Reject sends the submitted fix back. Rejected is a terminal state; a fresh
// action must be raised if the failure still needs remediation.
func (a *Action) Reject(notes string) error {
	if err := a.transition("Reject", StatusRejected); err != nil {
		return err
	}
	a.VerificationNotes = notes
	return nil
}

// IsOpen returns true while the action still needs respondent or approver
// attention.
func (a *Action) IsOpen() bool {
	return !a.Status.IsTerminal()
}

// IsOverdue returns true if the deadline has passed and the action is still
// waiting on a response.
func (a *Action) IsOverdue(now time.Time) bool {
	if a.Status != StatusPending && a.Status != StatusInProgress {
		return false
	}
	return now.After(a.Deadline)
}
