package contracts

import (
	"context"

	"auditflow/domain/template"
)

// TemplateRepository defines operations for template graphs.
type TemplateRepository interface {
	// GetByID loads a template with its full category/item tree, including
	// soft-deleted entries so historical audits can still be interpreted.
	GetByID(ctx context.Context, templateID string) (*template.Template, error)

	// Save persists a template and its category/item tree.
	Save(ctx context.Context, tpl *template.Template) error

	// ListAll returns all templates without their category trees.
	ListAll(ctx context.Context) ([]*template.Template, error)
}
