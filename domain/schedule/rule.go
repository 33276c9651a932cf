// Package schedule contains the recurrence engine and the instance
// reconciler for scheduled audits.
package schedule

import (
	"fmt"
	"time"
)

// Cadence is the recurrence frequency of a scheduled audit.
type Cadence string

const (
	CadenceOnce      Cadence = "once"
	CadenceDaily     Cadence = "daily"
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// String returns the string representation of the cadence.
func (c Cadence) String() string {
	return string(c)
}

// IsValid returns true if the cadence is a recognized value.
func (c Cadence) IsValid() bool {
	switch c {
	case CadenceOnce, CadenceDaily, CadenceWeekly, CadenceBiweekly,
		CadenceMonthly, CadenceQuarterly, CadenceYearly:
		return true
	}
	return false
}

// ScheduledAudit is a recurrence rule that materializes into concrete
// instances. Dates are interpreted at day granularity; occurrences are
// emitted as UTC midnights.
type ScheduledAudit struct {
	ID          string
	LocationID  string
	TemplateID  string
	InspectorID string // Optional default inspector
	Cadence     Cadence
	StartDate   time.Time
	EndDate     *time.Time // Inclusive; nil means no end
	DayOfWeek   int        // 0 (Sunday) - 6, used by weekly/biweekly
	DayOfMonth  int        // 1-31, used by monthly/quarterly; clamped to month length

	// TimeWindowDays is the grace period after a due date during which the
	// audit may still be completed before the instance counts as missed.
	TimeWindowDays int

	ReminderDaysBefore int
	NotifyOnMissed     bool
	Active             bool
}

// InstanceStatus represents the lifecycle state of a materialized occurrence.
type InstanceStatus string

const (
	InstancePending   InstanceStatus = "pending"
	InstanceCompleted InstanceStatus = "completed"
	InstanceMissed    InstanceStatus = "missed"
)

// IsValid returns true if the status is a recognized value.
func (s InstanceStatus) IsValid() bool {
	switch s {
	case InstancePending, InstanceCompleted, InstanceMissed:
		return true
	}
	return false
}

// Instance is one persisted, trackable occurrence of a scheduled audit.
type Instance struct {
	ID               string
	ScheduledAuditID string
	DueDate          time.Time
	Status           InstanceStatus
	AuditID          string // Linked audit once started; empty otherwise
	AuditCompleted   bool   // True when the linked audit reached completed
}

// RuleError wraps a validation failure for a single rule so that batch
// operations can report it without aborting sibling rules.
type RuleError struct {
	RuleID string
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.RuleID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Validate checks that the rule's fields are consistent with its cadence.
func (r *ScheduledAudit) Validate() error {
	if !r.Cadence.IsValid() {
		return fmt.Errorf("unknown cadence %q", r.Cadence)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("end date %s is before start date %s",
			r.EndDate.Format(time.DateOnly), r.StartDate.Format(time.DateOnly))
	}
	if r.TimeWindowDays <= 0 {
		return fmt.Errorf("time window must be positive, got %d days", r.TimeWindowDays)
	}

	switch r.Cadence {
	case CadenceWeekly, CadenceBiweekly:
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			return fmt.Errorf("day of week must be 0-6 for %s cadence, got %d", r.Cadence, r.DayOfWeek)
		}
	case CadenceMonthly, CadenceQuarterly:
		// Days past a month's length clamp to its last day, so 31 is valid.
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("day of month must be 1-31 for %s cadence, got %d", r.Cadence, r.DayOfMonth)
		}
	}

	return nil
}
