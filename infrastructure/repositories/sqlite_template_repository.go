package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auditflow/database"
	"auditflow/domain/contracts"
	"auditflow/domain/template"
)

// SqliteTemplateRepository implements contracts.TemplateRepository.
type SqliteTemplateRepository struct {
	*BaseRepository
}

// NewSqliteTemplateRepository creates a new template repository.
func NewSqliteTemplateRepository(db *database.Database) contracts.TemplateRepository {
	return &SqliteTemplateRepository{BaseRepository: NewBaseRepository(db)}
}

// GetByID loads a template with its full category/item tree. Soft-deleted
// rows are included so historical audits remain interpretable.
func (r *SqliteTemplateRepository) GetByID(ctx context.Context, templateID string) (*template.Template, error) {
	tpl := &template.Template{}
	row := r.ReadDB().QueryRowContext(ctx, `
		SELECT template_id, name, pass_threshold, require_photos, created_at, updated_at
		FROM templates WHERE template_id = ?`, templateID)
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.PassThreshold, &tpl.RequirePhotos, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("get template %s: %w", templateID, err)
	}

	catRows, err := r.ReadDB().QueryContext(ctx, `
		SELECT category_id, name, weight, deleted
		FROM categories WHERE template_id = ? ORDER BY sort_order, category_id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("get categories for template %s: %w", templateID, err)
	}
	defer catRows.Close()

	byCategory := map[string]*template.Category{}
	for catRows.Next() {
		cat := &template.Category{}
		if err := catRows.Scan(&cat.ID, &cat.Name, &cat.Weight, &cat.Deleted); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		tpl.Categories = append(tpl.Categories, cat)
		byCategory[cat.ID] = cat
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.ReadDB().QueryContext(ctx, `
		SELECT i.item_id, i.category_id, i.title, i.weight, i.deleted,
		       i.requires_photo, i.requires_comment_on_fail, i.creates_action_on_fail,
		       i.action_urgency, i.action_deadline_days
		FROM checklist_items i
		JOIN categories c ON c.category_id = i.category_id
		WHERE c.template_id = ?
		ORDER BY i.sort_order, i.item_id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("get items for template %s: %w", templateID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item := &template.ChecklistItem{}
		var categoryID, urgency string
		if err := itemRows.Scan(&item.ID, &categoryID, &item.Title, &item.Weight, &item.Deleted,
			&item.RequiresPhoto, &item.RequiresCommentOnFail, &item.CreatesActionOnFail,
			&urgency, &item.ActionDeadlineDays); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.ActionUrgency = template.Urgency(urgency)
		if cat, ok := byCategory[categoryID]; ok {
			cat.Items = append(cat.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return tpl, nil
}

// Save upserts a template and its category/item tree in one transaction.
func (r *SqliteTemplateRepository) Save(ctx context.Context, tpl *template.Template) error {
	return r.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO templates (template_id, name, pass_threshold, require_photos, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(template_id) DO UPDATE SET
				name = excluded.name,
				pass_threshold = excluded.pass_threshold,
				require_photos = excluded.require_photos,
				updated_at = excluded.updated_at`,
			tpl.ID, tpl.Name, tpl.PassThreshold, tpl.RequirePhotos, tpl.CreatedAt, tpl.UpdatedAt); err != nil {
			return fmt.Errorf("save template %s: %w", tpl.ID, err)
		}

		for order, cat := range tpl.Categories {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (category_id, template_id, name, weight, deleted, sort_order)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(category_id) DO UPDATE SET
					name = excluded.name,
					weight = excluded.weight,
					deleted = excluded.deleted,
					sort_order = excluded.sort_order`,
				cat.ID, tpl.ID, cat.Name, cat.Weight, cat.Deleted, order); err != nil {
				return fmt.Errorf("save category %s: %w", cat.ID, err)
			}

			for itemOrder, item := range cat.Items {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO checklist_items (item_id, category_id, title, weight, deleted,
						requires_photo, requires_comment_on_fail, creates_action_on_fail,
						action_urgency, action_deadline_days, sort_order)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(item_id) DO UPDATE SET
						title = excluded.title,
						weight = excluded.weight,
						deleted = excluded.deleted,
						requires_photo = excluded.requires_photo,
						requires_comment_on_fail = excluded.requires_comment_on_fail,
						creates_action_on_fail = excluded.creates_action_on_fail,
						action_urgency = excluded.action_urgency,
						action_deadline_days = excluded.action_deadline_days,
						sort_order = excluded.sort_order`,
					item.ID, cat.ID, item.Title, item.Weight, item.Deleted,
					item.RequiresPhoto, item.RequiresCommentOnFail, item.CreatesActionOnFail,
					string(item.ActionUrgency), item.ActionDeadlineDays, itemOrder); err != nil {
					return fmt.Errorf("save item %s: %w", item.ID, err)
				}
			}
		}

		return nil
	})
}

// ListAll returns all templates without their category trees.
func (r *SqliteTemplateRepository) ListAll(ctx context.Context) ([]*template.Template, error) {
	rows, err := r.ReadDB().QueryContext(ctx, `
		SELECT template_id, name, pass_threshold, require_photos, created_at, updated_at
		FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*template.Template
	for rows.Next() {
		tpl := &template.Template{}
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.PassThreshold, &tpl.RequirePhotos, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}
