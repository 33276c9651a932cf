// Package audit contains the audit aggregate and the weighted scoring engine.
package audit

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of an audit.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if the audit can move to the target status.
//
// Valid transitions:
//   - draft -> in_progress, cancelled
//   - in_progress -> completed, cancelled
//   - draft -> completed (an audit may be completed in a single submission)
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusInProgress || target == StatusCompleted || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}

// ResultValue is the outcome recorded for a single checklist item.
type ResultValue string

const (
	ResultPass ResultValue = "pass"
	ResultFail ResultValue = "fail"
	ResultNA   ResultValue = "na"
)

// IsValid returns true if the result value is recognized.
func (r ResultValue) IsValid() bool {
	switch r {
	case ResultPass, ResultFail, ResultNA:
		return true
	}
	return false
}

// Result is the recorded outcome for one (audit, checklist item) pair.
type Result struct {
	ItemID    string
	Value     ResultValue
	Comment   string
	PhotoURLs []string
}

// ResultSet maps checklist item IDs to recorded results. Items absent from
// the set are treated the same as na: they contribute nothing to the score.
type ResultSet map[string]Result

// Audit is the aggregate root for a single audit execution against a
// location. Score fields are computed by the scoring engine on completion,
// after which the audit is immutable.
type Audit struct {
	ID          string
	LocationID  string
	TemplateID  string
	InspectorID string
	Status      Status
	Results     ResultSet
	TotalScore  float64
	MaxScore    float64
	PassPct     int
	Passed      bool
	StartedAt   time.Time
	CompletedAt *time.Time
}

// InvariantViolation reports an internal consistency failure, such as
// mutating a completed audit. It is always fatal to the single operation.
type InvariantViolation struct {
	Op     string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Reason)
}

// NewAudit creates a draft audit with an empty result set.
func NewAudit(id, locationID, templateID, inspectorID string, now time.Time) *Audit {
	return &Audit{
		ID:          id,
		LocationID:  locationID,
		TemplateID:  templateID,
		InspectorID: inspectorID,
		Status:      StatusDraft,
		Results:     ResultSet{},
		StartedAt:   now,
	}
}

// RecordResult stores or replaces the result for an item. Recording against
// a terminal audit is an invariant violation.
func (a *Audit) RecordResult(r Result) error {
	if a.Status.IsTerminal() {
		return &InvariantViolation{
			Op:     "RecordResult",
			Reason: fmt.Sprintf("audit %s is %s", a.ID, a.Status),
		}
	}
	if !r.Value.IsValid() {
		return &InvariantViolation{
			Op:     "RecordResult",
			Reason: fmt.Sprintf("unknown result value %q for item %s", r.Value, r.ItemID),
		}
	}
	if a.Status == StatusDraft {
		a.Status = StatusInProgress
	}
	a.Results[r.ItemID] = r
	return nil
}

// Complete applies the computed score and moves the audit to its terminal
// completed state.
func (a *Audit) Complete(score Score, completedAt time.Time) error {
	if !a.Status.CanTransitionTo(StatusCompleted) {
		return &InvariantViolation{
			Op:     "Complete",
			Reason: fmt.Sprintf("cannot complete audit %s in status %s", a.ID, a.Status),
		}
	}
	a.Status = StatusCompleted
	a.TotalScore = score.TotalScore
	a.MaxScore = score.MaxScore
	a.PassPct = score.PassPercentage
	a.Passed = score.Passed
	a.CompletedAt = &completedAt
	return nil
}

// Cancel moves the audit to its terminal cancelled state.
func (a *Audit) Cancel() error {
	if !a.Status.CanTransitionTo(StatusCancelled) {
		return &InvariantViolation{
			Op:     "Cancel",
			Reason: fmt.Sprintf("cannot cancel audit %s in status %s", a.ID, a.Status),
		}
	}
	a.Status = StatusCancelled
	return nil
}

// IsComplete returns true once the audit has reached its completed state.
func (a *Audit) IsComplete() bool {
	return a.Status == StatusCompleted
}
