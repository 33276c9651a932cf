package application

import (
	"context"
	"fmt"
	"time"

	"auditflow/domain/contracts"
	domainevents "auditflow/domain/events"
	"auditflow/domain/schedule"
	"auditflow/logging"
	"auditflow/platform/events"

	"github.com/google/uuid"
)

// ReconciliationSummary reports what a reconciliation pass changed.
type ReconciliationSummary struct {
	RulesProcessed   int
	InstancesCreated int
	InstancesMissed  int
	InvalidRules     []*schedule.RuleError
}

// ScheduleService manages recurrence rules and drives reconciliation.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, rule *schedule.ScheduledAudit) (*schedule.ScheduledAudit, error)
	GetSchedule(ctx context.Context, ruleID string) (*schedule.ScheduledAudit, error)
	PreviewOccurrences(ctx context.Context, ruleID string, from, to time.Time) ([]time.Time, error)
	RunReconciliation(ctx context.Context, asOf time.Time) (*ReconciliationSummary, error)
}

// ScheduleServiceImpl is the production implementation of ScheduleService.
type ScheduleServiceImpl struct {
	schedules  contracts.ScheduleRepository
	reconciler *schedule.Reconciler
	eventBus   *events.AuditEventBus
	logger     *logging.Logger
}

// NewScheduleService creates a new schedule service with the given
// reconciliation window.
func NewScheduleService(
	schedules contracts.ScheduleRepository,
	window schedule.Window,
	eventBus *events.AuditEventBus,
) ScheduleService {
	return &ScheduleServiceImpl{
		schedules:  schedules,
		reconciler: schedule.NewReconciler(window),
		eventBus:   eventBus,
		logger:     logging.Default().WithComponent("schedule_service"),
	}
}

// CreateSchedule validates and persists a new recurrence rule.
func (s *ScheduleServiceImpl) CreateSchedule(ctx context.Context, rule *schedule.ScheduledAudit) (*schedule.ScheduledAudit, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.StartDate = schedule.DateOnly(rule.StartDate)
	if rule.EndDate != nil {
		end := schedule.DateOnly(*rule.EndDate)
		rule.EndDate = &end
	}
	if err := rule.Validate(); err != nil {
		return nil, &schedule.RuleError{RuleID: rule.ID, Err: err}
	}

	if err := s.schedules.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("save rule: %w", err)
	}

	s.logger.Schedule("Schedule created",
		"rule_id", rule.ID,
		"cadence", rule.Cadence,
		"start_date", rule.StartDate.Format(time.DateOnly))
	return rule, nil
}

// GetSchedule loads a single recurrence rule.
func (s *ScheduleServiceImpl) GetSchedule(ctx context.Context, ruleID string) (*schedule.ScheduledAudit, error) {
	return s.schedules.GetRule(ctx, ruleID)
}

// PreviewOccurrences computes the due dates a rule produces in a range
// without materializing anything.
func (s *ScheduleServiceImpl) PreviewOccurrences(ctx context.Context, ruleID string, from, to time.Time) ([]time.Time, error) {
	rule, err := s.schedules.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	return schedule.OccurrencesBetween(rule, from, to)
}

// RunReconciliation loads all active rules and their instances, computes the
// reconciliation plan, and applies it: missing occurrences become pending
// instances, lapsed pending instances become missed. Invalid rules are
// reported in the summary without aborting the pass.
func (s *ScheduleServiceImpl) RunReconciliation(ctx context.Context, asOf time.Time) (*ReconciliationSummary, error) {
	start := time.Now()

	rules, err := s.schedules.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}

	ruleIDs := make([]string, len(rules))
	for i, rule := range rules {
		ruleIDs[i] = rule.ID
	}

	existing, err := s.schedules.ListInstances(ctx, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	plan := s.reconciler.Reconcile(rules, existing, asOf)

	summary := &ReconciliationSummary{
		RulesProcessed: len(rules),
		InvalidRules:   plan.Invalid,
	}
	for _, ruleErr := range plan.Invalid {
		s.logger.Schedule("Skipping malformed schedule rule",
			"rule_id", ruleErr.RuleID,
			"error", ruleErr.Err.Error())
	}

	if len(plan.ToCreate) > 0 {
		created, err := s.schedules.CreateInstances(ctx, plan.ToCreate)
		if err != nil {
			return nil, fmt.Errorf("create instances: %w", err)
		}
		summary.InstancesCreated = created
	}

	if len(plan.ToMarkMissed) > 0 {
		if err := s.schedules.MarkMissed(ctx, plan.ToMarkMissed); err != nil {
			return nil, fmt.Errorf("mark instances missed: %w", err)
		}
		summary.InstancesMissed = len(plan.ToMarkMissed)
		s.eventBus.PublishInstancesMissed(domainevents.InstancesMissedEvent{
			InstanceIDs: plan.ToMarkMissed,
			Timestamp:   time.Now(),
		})
	}

	s.logger.Schedule("Reconciliation completed",
		"rules", summary.RulesProcessed,
		"created", summary.InstancesCreated,
		"missed", summary.InstancesMissed,
		"invalid", len(summary.InvalidRules),
		"duration_ms", time.Since(start).Milliseconds())

	return summary, nil
}
