package schedule

import "time"

// Window bounds the reconciliation horizon around the as-of date. The values
// are configuration, not business rules; defaults come from DefaultWindow.
type Window struct {
	LookbackDays  int
	LookaheadDays int
}

// DefaultWindow returns the default reconciliation horizon: 30 days of
// backfill for unmaterialized past due dates and 60 days of lookahead.
func DefaultWindow() Window {
	return Window{LookbackDays: 30, LookaheadDays: 60}
}

// InstanceDraft identifies an occurrence that needs to be materialized.
type InstanceDraft struct {
	ScheduledAuditID string
	DueDate          time.Time
}

// Plan is the outcome of a reconciliation pass. Applying ToCreate and
// ToMarkMissed to the store and re-running with the same as-of date yields
// an empty plan.
type Plan struct {
	ToCreate     []InstanceDraft
	ToMarkMissed []string // Instance IDs
	Invalid      []*RuleError
}

// IsEmpty returns true when the plan requires no store changes.
func (p *Plan) IsEmpty() bool {
	return len(p.ToCreate) == 0 && len(p.ToMarkMissed) == 0
}

// Reconciler compares computed occurrences against materialized instances.
type Reconciler struct {
	window Window
}

// NewReconciler creates a reconciler with the given horizon.
func NewReconciler(window Window) *Reconciler {
	if window.LookbackDays < 0 {
		window.LookbackDays = 0
	}
	if window.LookaheadDays < 0 {
		window.LookaheadDays = 0
	}
	return &Reconciler{window: window}
}

// Reconcile computes the plan for a batch of rules against their existing
// instances as of the given date.
//
// For every active rule, occurrences inside the window that have no
// materialized instance become ToCreate entries. Pending instances whose
// grace period (due date + rule time window) elapsed before asOf with no
// completed linked audit become ToMarkMissed entries.
//
// A malformed rule is reported in Invalid and does not abort reconciliation
// of sibling rules. The reconciler itself never mutates state, so the pass
// is idempotent: without intervening store changes the same inputs produce
// the same plan.
func (r *Reconciler) Reconcile(rules []*ScheduledAudit, existing []*Instance, asOf time.Time) *Plan {
	asOf = DateOnly(asOf)
	from := asOf.AddDate(0, 0, -r.window.LookbackDays)
	to := asOf.AddDate(0, 0, r.window.LookaheadDays)

	byRule := make(map[string][]*Instance)
	for _, inst := range existing {
		byRule[inst.ScheduledAuditID] = append(byRule[inst.ScheduledAuditID], inst)
	}

	plan := &Plan{}
	for _, rule := range rules {
		if !rule.Active {
			continue
		}

		occurrences, err := OccurrencesBetween(rule, from, to)
		if err != nil {
			plan.Invalid = append(plan.Invalid, &RuleError{RuleID: rule.ID, Err: err})
			continue
		}

		materialized := make(map[time.Time]bool, len(byRule[rule.ID]))
		for _, inst := range byRule[rule.ID] {
			materialized[DateOnly(inst.DueDate)] = true
		}

		for _, due := range occurrences {
			if materialized[due] {
				continue
			}
			plan.ToCreate = append(plan.ToCreate, InstanceDraft{
				ScheduledAuditID: rule.ID,
				DueDate:          due,
			})
		}

		for _, inst := range byRule[rule.ID] {
			if inst.Status != InstancePending || inst.AuditCompleted {
				continue
			}
			graceEnd := DateOnly(inst.DueDate).AddDate(0, 0, rule.TimeWindowDays)
			if graceEnd.Before(asOf) {
				plan.ToMarkMissed = append(plan.ToMarkMissed, inst.ID)
			}
		}
	}

	return plan
}
