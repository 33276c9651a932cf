package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auditflow/database"
	"auditflow/domain/action"
	"auditflow/domain/contracts"
	"auditflow/domain/template"
)

// SqliteActionRepository implements contracts.ActionRepository.
type SqliteActionRepository struct {
	*BaseRepository
}

// NewSqliteActionRepository creates a new action repository.
func NewSqliteActionRepository(db *database.Database) contracts.ActionRepository {
	return &SqliteActionRepository{BaseRepository: NewBaseRepository(db)}
}

const actionColumns = `action_id, audit_id, item_id, location_id, title, description,
	status, urgency, deadline, requires_photo, requires_comment_on_fail,
	response_text, response_photo_urls, verification_notes,
	created_at, completed_at, verified_at`

func scanAction(scanner interface{ Scan(...any) error }) (*action.Action, error) {
	a := &action.Action{}
	var auditID, itemID sql.NullString
	var urgency, status, responsePhotos string
	var completedAt, verifiedAt sql.NullTime

	if err := scanner.Scan(&a.ID, &auditID, &itemID, &a.LocationID, &a.Title, &a.Description,
		&status, &urgency, &a.Deadline, &a.RequiresPhoto, &a.RequiresCommentOnFail,
		&a.ResponseText, &responsePhotos, &a.VerificationNotes,
		&a.CreatedAt, &completedAt, &verifiedAt); err != nil {
		return nil, err
	}

	a.AuditID = ns(auditID)
	a.ItemID = ns(itemID)
	a.Status = action.Status(status)
	a.Urgency = template.Urgency(urgency)
	a.ResponsePhotoURLs = decodeStrings(responsePhotos)
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	if verifiedAt.Valid {
		a.VerifiedAt = &verifiedAt.Time
	}
	return a, nil
}

// GetByID loads a single action.
func (r *SqliteActionRepository) GetByID(ctx context.Context, actionID string) (*action.Action, error) {
	row := r.ReadDB().QueryRowContext(ctx,
		"SELECT "+actionColumns+" FROM actions WHERE action_id = ?", actionID)
	a, err := scanAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("get action %s: %w", actionID, err)
	}
	return a, nil
}

// CreateBatch inserts actions, skipping (audit_id, item_id) collisions so
// re-running audit completion never duplicates actions.
func (r *SqliteActionRepository) CreateBatch(ctx context.Context, actions []*action.Action) (int, error) {
	inserted := 0
	err := r.WithTx(func(tx *sql.Tx) error {
		for _, a := range actions {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO actions (`+actionColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, nullable(a.AuditID), nullable(a.ItemID), a.LocationID, a.Title, a.Description,
				string(a.Status), string(a.Urgency), a.Deadline, a.RequiresPhoto, a.RequiresCommentOnFail,
				a.ResponseText, encodeStrings(a.ResponsePhotoURLs), a.VerificationNotes,
				a.CreatedAt, a.CompletedAt, a.VerifiedAt)
			if err != nil {
				return fmt.Errorf("create action %s: %w", a.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	return inserted, err
}

// ListByAudit returns all actions spawned by an audit.
func (r *SqliteActionRepository) ListByAudit(ctx context.Context, auditID string) ([]*action.Action, error) {
	rows, err := r.ReadDB().QueryContext(ctx,
		"SELECT "+actionColumns+" FROM actions WHERE audit_id = ? ORDER BY created_at, action_id", auditID)
	if err != nil {
		return nil, fmt.Errorf("list actions for audit %s: %w", auditID, err)
	}
	defer rows.Close()
	return collectActions(rows)
}

// ListOpen returns non-terminal actions, optionally filtered by location.
func (r *SqliteActionRepository) ListOpen(ctx context.Context, locationID string) ([]*action.Action, error) {
	query := "SELECT " + actionColumns + " FROM actions WHERE status IN (?, ?, ?)"
	args := []any{string(action.StatusPending), string(action.StatusInProgress), string(action.StatusCompleted)}
	if locationID != "" {
		query += " AND location_id = ?"
		args = append(args, locationID)
	}
	query += " ORDER BY deadline, action_id"

	rows, err := r.ReadDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list open actions: %w", err)
	}
	defer rows.Close()
	return collectActions(rows)
}

// Update persists workflow state changes.
func (r *SqliteActionRepository) Update(ctx context.Context, a *action.Action) error {
	res, err := r.WriteDB().ExecContext(ctx, `
		UPDATE actions
		SET status = ?, response_text = ?, response_photo_urls = ?,
		    verification_notes = ?, completed_at = ?, verified_at = ?
		WHERE action_id = ?`,
		string(a.Status), a.ResponseText, encodeStrings(a.ResponsePhotoURLs),
		a.VerificationNotes, a.CompletedAt, a.VerifiedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update action %s: %w", a.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

func collectActions(rows *sql.Rows) ([]*action.Action, error) {
	var actions []*action.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
