package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auditflow/domain/contracts"
	"auditflow/domain/template"
	"auditflow/logging"

	"github.com/google/uuid"
)

// TemplateService manages checklist templates.
type TemplateService interface {
	GetTemplate(ctx context.Context, templateID string) (*template.Template, error)
	ListTemplates(ctx context.Context) ([]*template.Template, error)
	SaveTemplate(ctx context.Context, tpl *template.Template) (*template.Template, error)
}

// TemplateServiceImpl is the production implementation of TemplateService.
type TemplateServiceImpl struct {
	templates contracts.TemplateRepository
	logger    *logging.Logger
	now       func() time.Time
}

// NewTemplateService creates a new template service.
func NewTemplateService(templates contracts.TemplateRepository) TemplateService {
	return &TemplateServiceImpl{
		templates: templates,
		logger:    logging.Default().WithComponent("template_service"),
		now:       time.Now,
	}
}

// GetTemplate loads a template with its category/item tree.
func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, templateID string) (*template.Template, error) {
	return s.templates.GetByID(ctx, templateID)
}

// ListTemplates returns all templates without their trees.
func (s *TemplateServiceImpl) ListTemplates(ctx context.Context) ([]*template.Template, error) {
	return s.templates.ListAll(ctx)
}

// SaveTemplate validates and persists a template. Missing identifiers are
// generated; all validation errors are reported together.
func (s *TemplateServiceImpl) SaveTemplate(ctx context.Context, tpl *template.Template) (*template.Template, error) {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
		tpl.CreatedAt = s.now()
	}
	tpl.UpdatedAt = s.now()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = tpl.UpdatedAt
	}
	for _, cat := range tpl.Categories {
		if cat.ID == "" {
			cat.ID = uuid.NewString()
		}
		if cat.Weight == 0 {
			cat.Weight = 1
		}
		for _, item := range cat.Items {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			if item.Weight == 0 {
				item.Weight = 1
			}
		}
	}

	if errs := tpl.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("template validation failed: %w", errors.Join(errs...))
	}

	if err := s.templates.Save(ctx, tpl); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}

	s.logger.Info("Template saved", "template_id", tpl.ID, "categories", len(tpl.Categories))
	return tpl, nil
}
