package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auditflow/database"
	"auditflow/domain/audit"
	"auditflow/domain/contracts"
)

// SqliteAuditRepository implements contracts.AuditRepository.
type SqliteAuditRepository struct {
	*BaseRepository
}

// NewSqliteAuditRepository creates a new audit repository.
func NewSqliteAuditRepository(db *database.Database) contracts.AuditRepository {
	return &SqliteAuditRepository{BaseRepository: NewBaseRepository(db)}
}

// GetByID loads an audit aggregate with its result set.
func (r *SqliteAuditRepository) GetByID(ctx context.Context, auditID string) (*audit.Audit, error) {
	a := &audit.Audit{Results: audit.ResultSet{}}
	var status string
	var completedAt sql.NullTime

	row := r.ReadDB().QueryRowContext(ctx, `
		SELECT audit_id, location_id, template_id, inspector_id, status,
		       total_score, max_score, pass_pct, passed, started_at, completed_at
		FROM audits WHERE audit_id = ?`, auditID)
	if err := row.Scan(&a.ID, &a.LocationID, &a.TemplateID, &a.InspectorID, &status,
		&a.TotalScore, &a.MaxScore, &a.PassPct, &a.Passed, &a.StartedAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("get audit %s: %w", auditID, err)
	}
	a.Status = audit.Status(status)
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}

	rows, err := r.ReadDB().QueryContext(ctx, `
		SELECT item_id, result, comment, photo_urls
		FROM audit_results WHERE audit_id = ?`, auditID)
	if err != nil {
		return nil, fmt.Errorf("get results for audit %s: %w", auditID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var res audit.Result
		var value, photos string
		if err := rows.Scan(&res.ItemID, &value, &res.Comment, &photos); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Value = audit.ResultValue(value)
		res.PhotoURLs = decodeStrings(photos)
		a.Results[res.ItemID] = res
	}
	return a, rows.Err()
}

// Create persists a new audit.
func (r *SqliteAuditRepository) Create(ctx context.Context, a *audit.Audit) error {
	_, err := r.WriteDB().ExecContext(ctx, `
		INSERT INTO audits (audit_id, location_id, template_id, inspector_id, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.LocationID, a.TemplateID, a.InspectorID, string(a.Status), a.StartedAt)
	if err != nil {
		return fmt.Errorf("create audit %s: %w", a.ID, err)
	}
	return nil
}

// SaveResult upserts a single item result for an in-flight audit.
func (r *SqliteAuditRepository) SaveResult(ctx context.Context, auditID string, result audit.Result) error {
	return r.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audit_results (audit_id, item_id, result, comment, photo_urls)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(audit_id, item_id) DO UPDATE SET
				result = excluded.result,
				comment = excluded.comment,
				photo_urls = excluded.photo_urls`,
			auditID, result.ItemID, string(result.Value), result.Comment, encodeStrings(result.PhotoURLs)); err != nil {
			return fmt.Errorf("save result for audit %s item %s: %w", auditID, result.ItemID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE audits SET status = ? WHERE audit_id = ? AND status = ?`,
			string(audit.StatusInProgress), auditID, string(audit.StatusDraft)); err != nil {
			return fmt.Errorf("advance audit %s to in_progress: %w", auditID, err)
		}
		return nil
	})
}

// Complete persists the computed score fields and the terminal status.
func (r *SqliteAuditRepository) Complete(ctx context.Context, a *audit.Audit) error {
	res, err := r.WriteDB().ExecContext(ctx, `
		UPDATE audits
		SET status = ?, total_score = ?, max_score = ?, pass_pct = ?, passed = ?, completed_at = ?
		WHERE audit_id = ?`,
		string(a.Status), a.TotalScore, a.MaxScore, a.PassPct, a.Passed, a.CompletedAt, a.ID)
	if err != nil {
		return fmt.Errorf("complete audit %s: %w", a.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// Cancel persists the cancelled terminal status.
func (r *SqliteAuditRepository) Cancel(ctx context.Context, auditID string) error {
	res, err := r.WriteDB().ExecContext(ctx, `
		UPDATE audits SET status = ? WHERE audit_id = ?`,
		string(audit.StatusCancelled), auditID)
	if err != nil {
		return fmt.Errorf("cancel audit %s: %w", auditID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// ListCompleted returns completed-audit summaries for reporting.
func (r *SqliteAuditRepository) ListCompleted(ctx context.Context, locationID, templateID string, since time.Time) ([]*contracts.CompletedAuditSummary, error) {
	query := `
		SELECT audit_id, location_id, template_id, pass_pct, passed, completed_at
		FROM audits
		WHERE status = ? AND completed_at >= ?`
	args := []any{string(audit.StatusCompleted), since}

	if locationID != "" {
		query += " AND location_id = ?"
		args = append(args, locationID)
	}
	if templateID != "" {
		query += " AND template_id = ?"
		args = append(args, templateID)
	}
	query += " ORDER BY completed_at"

	rows, err := r.ReadDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completed audits: %w", err)
	}
	defer rows.Close()

	var summaries []*contracts.CompletedAuditSummary
	for rows.Next() {
		s := &contracts.CompletedAuditSummary{}
		if err := rows.Scan(&s.AuditID, &s.LocationID, &s.TemplateID, &s.PassPct, &s.Passed, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan audit summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
