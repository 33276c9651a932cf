package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"auditflow/database"
	"auditflow/domain/audit"
	"auditflow/domain/contracts"
	"auditflow/domain/schedule"

	"github.com/google/uuid"
)

// SqliteScheduleRepository implements contracts.ScheduleRepository.
type SqliteScheduleRepository struct {
	*BaseRepository
}

// NewSqliteScheduleRepository creates a new schedule repository.
func NewSqliteScheduleRepository(db *database.Database) contracts.ScheduleRepository {
	return &SqliteScheduleRepository{BaseRepository: NewBaseRepository(db)}
}

const ruleColumns = `scheduled_audit_id, location_id, template_id, inspector_id, cadence,
	start_date, end_date, day_of_week, day_of_month, time_window_days,
	reminder_days_before, notify_on_missed, active`

func scanRule(scanner interface{ Scan(...any) error }) (*schedule.ScheduledAudit, error) {
	rule := &schedule.ScheduledAudit{}
	var cadence string
	var endDate sql.NullTime

	if err := scanner.Scan(&rule.ID, &rule.LocationID, &rule.TemplateID, &rule.InspectorID, &cadence,
		&rule.StartDate, &endDate, &rule.DayOfWeek, &rule.DayOfMonth, &rule.TimeWindowDays,
		&rule.ReminderDaysBefore, &rule.NotifyOnMissed, &rule.Active); err != nil {
		return nil, err
	}
	rule.Cadence = schedule.Cadence(cadence)
	if endDate.Valid {
		rule.EndDate = &endDate.Time
	}
	return rule, nil
}

// GetRule loads a single recurrence rule.
func (r *SqliteScheduleRepository) GetRule(ctx context.Context, ruleID string) (*schedule.ScheduledAudit, error) {
	row := r.ReadDB().QueryRowContext(ctx,
		"SELECT "+ruleColumns+" FROM scheduled_audits WHERE scheduled_audit_id = ?", ruleID)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("get rule %s: %w", ruleID, err)
	}
	return rule, nil
}

// SaveRule upserts a recurrence rule.
func (r *SqliteScheduleRepository) SaveRule(ctx context.Context, rule *schedule.ScheduledAudit) error {
	var endDate any
	if rule.EndDate != nil {
		endDate = *rule.EndDate
	}
	_, err := r.WriteDB().ExecContext(ctx, `
		INSERT INTO scheduled_audits (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scheduled_audit_id) DO UPDATE SET
			location_id = excluded.location_id,
			template_id = excluded.template_id,
			inspector_id = excluded.inspector_id,
			cadence = excluded.cadence,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			day_of_week = excluded.day_of_week,
			day_of_month = excluded.day_of_month,
			time_window_days = excluded.time_window_days,
			reminder_days_before = excluded.reminder_days_before,
			notify_on_missed = excluded.notify_on_missed,
			active = excluded.active`,
		rule.ID, rule.LocationID, rule.TemplateID, rule.InspectorID, string(rule.Cadence),
		rule.StartDate, endDate, rule.DayOfWeek, rule.DayOfMonth, rule.TimeWindowDays,
		rule.ReminderDaysBefore, rule.NotifyOnMissed, rule.Active)
	if err != nil {
		return fmt.Errorf("save rule %s: %w", rule.ID, err)
	}
	return nil
}

// ListActiveRules returns all active recurrence rules.
func (r *SqliteScheduleRepository) ListActiveRules(ctx context.Context) ([]*schedule.ScheduledAudit, error) {
	rows, err := r.ReadDB().QueryContext(ctx,
		"SELECT "+ruleColumns+" FROM scheduled_audits WHERE active = 1 ORDER BY scheduled_audit_id")
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()

	var rules []*schedule.ScheduledAudit
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ListInstances returns instances for the given rules, joined with the
// completion state of any linked audit.
func (r *SqliteScheduleRepository) ListInstances(ctx context.Context, ruleIDs []string) ([]*schedule.Instance, error) {
	if len(ruleIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ruleIDs)), ",")
	args := make([]any, len(ruleIDs))
	for i, id := range ruleIDs {
		args[i] = id
	}

	rows, err := r.ReadDB().QueryContext(ctx, fmt.Sprintf(`
		SELECT i.instance_id, i.scheduled_audit_id, i.due_date, i.status, i.audit_id,
		       COALESCE(a.status, '') AS audit_status
		FROM scheduled_audit_instances i
		LEFT JOIN audits a ON a.audit_id = i.audit_id
		WHERE i.scheduled_audit_id IN (%s)
		ORDER BY i.due_date, i.instance_id`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var instances []*schedule.Instance
	for rows.Next() {
		inst := &schedule.Instance{}
		var status, auditStatus string
		var auditID sql.NullString
		if err := rows.Scan(&inst.ID, &inst.ScheduledAuditID, &inst.DueDate, &status, &auditID, &auditStatus); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		inst.Status = schedule.InstanceStatus(status)
		inst.AuditID = ns(auditID)
		inst.AuditCompleted = auditStatus == string(audit.StatusCompleted)
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

// CreateInstances materializes occurrence drafts as pending instances. The
// (scheduled_audit_id, due_date) uniqueness constraint absorbs races between
// concurrent reconciliation runs.
func (r *SqliteScheduleRepository) CreateInstances(ctx context.Context, drafts []schedule.InstanceDraft) (int, error) {
	inserted := 0
	err := r.WithTx(func(tx *sql.Tx) error {
		for _, draft := range drafts {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO scheduled_audit_instances
					(instance_id, scheduled_audit_id, due_date, status)
				VALUES (?, ?, ?, ?)`,
				uuid.NewString(), draft.ScheduledAuditID, draft.DueDate, string(schedule.InstancePending))
			if err != nil {
				return fmt.Errorf("create instance for rule %s on %s: %w",
					draft.ScheduledAuditID, draft.DueDate.Format(time.DateOnly), err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	return inserted, err
}

// MarkMissed transitions the given pending instances to missed.
func (r *SqliteScheduleRepository) MarkMissed(ctx context.Context, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	return r.WithTx(func(tx *sql.Tx) error {
		for _, id := range instanceIDs {
			if _, err := tx.ExecContext(ctx, `
				UPDATE scheduled_audit_instances
				SET status = ? WHERE instance_id = ? AND status = ?`,
				string(schedule.InstanceMissed), id, string(schedule.InstancePending)); err != nil {
				return fmt.Errorf("mark instance %s missed: %w", id, err)
			}
		}
		return nil
	})
}

// LinkAudit attaches a started audit to a pending instance.
func (r *SqliteScheduleRepository) LinkAudit(ctx context.Context, instanceID, auditID string) error {
	res, err := r.WriteDB().ExecContext(ctx, `
		UPDATE scheduled_audit_instances
		SET audit_id = ? WHERE instance_id = ? AND status = ?`,
		auditID, instanceID, string(schedule.InstancePending))
	if err != nil {
		return fmt.Errorf("link audit %s to instance %s: %w", auditID, instanceID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// CompleteInstance marks an instance completed once its linked audit is done.
func (r *SqliteScheduleRepository) CompleteInstance(ctx context.Context, instanceID string, completedAt time.Time) error {
	res, err := r.WriteDB().ExecContext(ctx, `
		UPDATE scheduled_audit_instances
		SET status = ?, completed_at = ? WHERE instance_id = ?`,
		string(schedule.InstanceCompleted), completedAt, instanceID)
	if err != nil {
		return fmt.Errorf("complete instance %s: %w", instanceID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// FindInstanceByAudit returns the instance linked to an audit.
func (r *SqliteScheduleRepository) FindInstanceByAudit(ctx context.Context, auditID string) (*schedule.Instance, error) {
	inst := &schedule.Instance{AuditID: auditID}
	var status string
	row := r.ReadDB().QueryRowContext(ctx, `
		SELECT instance_id, scheduled_audit_id, due_date, status
		FROM scheduled_audit_instances WHERE audit_id = ?`, auditID)
	if err := row.Scan(&inst.ID, &inst.ScheduledAuditID, &inst.DueDate, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("find instance for audit %s: %w", auditID, err)
	}
	inst.Status = schedule.InstanceStatus(status)
	return inst, nil
}
