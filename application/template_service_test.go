package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"auditflow/domain/template"
	"auditflow/test/mocks"
)

func TestTemplateService_SaveTemplate_GeneratesIDsAndDefaults(t *testing.T) {
	repo := &mocks.MockTemplateRepository{}
	repo.On("Save", mock.Anything, mock.AnythingOfType("*template.Template")).Return(nil)

	tpl := &template.Template{
		Name:          "Opening checklist",
		PassThreshold: 75,
		Categories: []*template.Category{
			{Name: "Front of house", Items: []*template.ChecklistItem{{Title: "Signage on"}}},
		},
	}

	saved, err := NewTemplateService(repo).SaveTemplate(context.Background(), tpl)

	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.Categories[0].ID)
	assert.NotEmpty(t, saved.Categories[0].Items[0].ID)
	assert.Equal(t, 1.0, saved.Categories[0].Weight)
	assert.Equal(t, 1.0, saved.Categories[0].Items[0].Weight)
	assert.False(t, saved.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestTemplateService_SaveTemplate_RejectsInvalid(t *testing.T) {
	repo := &mocks.MockTemplateRepository{}

	tpl := &template.Template{
		Name:          "Broken",
		PassThreshold: 120,
	}

	_, err := NewTemplateService(repo).SaveTemplate(context.Background(), tpl)

	require.Error(t, err)
	var verr *template.ValidationError
	assert.ErrorAs(t, err, &verr)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
