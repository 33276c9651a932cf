package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"auditflow/domain/action"
	"auditflow/domain/audit"
	"auditflow/domain/contracts"
	"auditflow/domain/schedule"
	"auditflow/domain/template"
	"auditflow/logging"
	"auditflow/platform/events"
	"auditflow/test/mocks"
)

type auditServiceFixture struct {
	audits    *mocks.MockAuditRepository
	templates *mocks.MockTemplateRepository
	actions   *mocks.MockActionRepository
	schedules *mocks.MockScheduleRepository
	service   *AuditServiceImpl
}

func newAuditServiceFixture(now time.Time) *auditServiceFixture {
	f := &auditServiceFixture{
		audits:    &mocks.MockAuditRepository{},
		templates: &mocks.MockTemplateRepository{},
		actions:   &mocks.MockActionRepository{},
		schedules: &mocks.MockScheduleRepository{},
	}
	f.service = &AuditServiceImpl{
		audits:    f.audits,
		templates: f.templates,
		actions:   f.actions,
		schedules: f.schedules,
		factory:   action.NewFactory(),
		eventBus:  events.NewAuditEventBus(),
		logger:    logging.Default().WithComponent("audit_service"),
		now:       func() time.Time { return now },
	}
	return f
}

func scoringTemplate() *template.Template {
	return &template.Template{
		ID:            "tpl-1",
		PassThreshold: 70,
		Categories: []*template.Category{
			{
				ID:     "cat-1",
				Weight: 1,
				Items: []*template.ChecklistItem{
					{ID: "item-1", Title: "Exits clear", Weight: 1},
					{
						ID:                  "item-2",
						Title:               "Extinguishers charged",
						Weight:              2,
						CreatesActionOnFail: true,
						ActionUrgency:       template.UrgencyHigh,
						ActionDeadlineDays:  7,
					},
				},
			},
		},
	}
}

func TestAuditService_StartAudit(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newAuditServiceFixture(now)

	f.templates.On("GetByID", mock.Anything, "tpl-1").Return(scoringTemplate(), nil)
	f.audits.On("Create", mock.Anything, mock.AnythingOfType("*audit.Audit")).Return(nil)

	a, err := f.service.StartAudit(context.Background(), "loc-1", "tpl-1", "inspector-1", "")

	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, audit.StatusDraft, a.Status)
	assert.Equal(t, now, a.StartedAt)
	f.schedules.AssertNotCalled(t, "LinkAudit", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuditService_StartAudit_LinksScheduledInstance(t *testing.T) {
	f := newAuditServiceFixture(time.Now())

	f.templates.On("GetByID", mock.Anything, "tpl-1").Return(scoringTemplate(), nil)
	f.audits.On("Create", mock.Anything, mock.AnythingOfType("*audit.Audit")).Return(nil)
	f.schedules.On("LinkAudit", mock.Anything, "inst-1", mock.AnythingOfType("string")).Return(nil)

	a, err := f.service.StartAudit(context.Background(), "loc-1", "tpl-1", "inspector-1", "inst-1")

	require.NoError(t, err)
	f.schedules.AssertCalled(t, "LinkAudit", mock.Anything, "inst-1", a.ID)
}

func TestAuditService_StartAudit_UnknownTemplate(t *testing.T) {
	f := newAuditServiceFixture(time.Now())
	f.templates.On("GetByID", mock.Anything, "missing").Return(nil, contracts.ErrNotFound)

	_, err := f.service.StartAudit(context.Background(), "loc-1", "missing", "inspector-1", "")

	assert.ErrorIs(t, err, contracts.ErrNotFound)
	f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditService_CompleteAudit_Pipeline(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newAuditServiceFixture(now)

	a := audit.NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", now.Add(-time.Hour))
	require.NoError(t, a.RecordResult(audit.Result{ItemID: "item-1", Value: audit.ResultPass}))
	require.NoError(t, a.RecordResult(audit.Result{ItemID: "item-2", Value: audit.ResultFail}))

	f.audits.On("GetByID", mock.Anything, "audit-1").Return(a, nil)
	f.templates.On("GetByID", mock.Anything, "tpl-1").Return(scoringTemplate(), nil)
	f.audits.On("Complete", mock.Anything, a).Return(nil)
	f.actions.On("ListByAudit", mock.Anything, "audit-1").Return([]*action.Action{}, nil)
	f.actions.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*action.Action")).Return(1, nil)
	f.schedules.On("FindInstanceByAudit", mock.Anything, "audit-1").Return(nil, contracts.ErrNotFound)

	result, err := f.service.CompleteAudit(context.Background(), "audit-1")

	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score.TotalScore)
	assert.Equal(t, 3.0, result.Score.MaxScore)
	assert.Equal(t, 33, result.Score.PassPercentage)
	assert.False(t, result.Score.Passed)
	assert.Equal(t, audit.StatusCompleted, result.Audit.Status)

	require.Len(t, result.ActionsCreated, 1)
	created := result.ActionsCreated[0]
	assert.Equal(t, "item-2", created.ItemID)
	assert.Equal(t, now.AddDate(0, 0, 7), created.Deadline)

	f.actions.AssertExpectations(t)
	f.audits.AssertExpectations(t)
}

func TestAuditService_CompleteAudit_SkipsExistingActions(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newAuditServiceFixture(now)

	a := audit.NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", now.Add(-time.Hour))
	require.NoError(t, a.RecordResult(audit.Result{ItemID: "item-2", Value: audit.ResultFail}))

	f.audits.On("GetByID", mock.Anything, "audit-1").Return(a, nil)
	f.templates.On("GetByID", mock.Anything, "tpl-1").Return(scoringTemplate(), nil)
	f.audits.On("Complete", mock.Anything, a).Return(nil)
	f.actions.On("ListByAudit", mock.Anything, "audit-1").Return([]*action.Action{
		{ID: "act-1", AuditID: "audit-1", ItemID: "item-2"},
	}, nil)
	f.schedules.On("FindInstanceByAudit", mock.Anything, "audit-1").Return(nil, contracts.ErrNotFound)

	result, err := f.service.CompleteAudit(context.Background(), "audit-1")

	require.NoError(t, err)
	assert.Empty(t, result.ActionsCreated)
	f.actions.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestAuditService_CompleteAudit_AlreadyCompleted(t *testing.T) {
	f := newAuditServiceFixture(time.Now())

	a := audit.NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", time.Now())
	require.NoError(t, a.Complete(audit.Score{}, time.Now()))

	f.audits.On("GetByID", mock.Anything, "audit-1").Return(a, nil)
	f.templates.On("GetByID", mock.Anything, "tpl-1").Return(scoringTemplate(), nil)

	_, err := f.service.CompleteAudit(context.Background(), "audit-1")

	var violation *audit.InvariantViolation
	require.ErrorAs(t, err, &violation)
	f.audits.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAuditService_CompleteAudit_CompletesLinkedInstance(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newAuditServiceFixture(now)

	a := audit.NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", now.Add(-time.Hour))
	require.NoError(t, a.RecordResult(audit.Result{ItemID: "item-1", Value: audit.ResultPass}))

	f.audits.On("GetByID", mock.Anything, "audit-1").Return(a, nil)
	f.templates.On("GetByID", mock.Anything, "tpl-1").Return(scoringTemplate(), nil)
	f.audits.On("Complete", mock.Anything, a).Return(nil)
	f.actions.On("ListByAudit", mock.Anything, "audit-1").Return([]*action.Action{}, nil)
	f.schedules.On("FindInstanceByAudit", mock.Anything, "audit-1").Return(&schedule.Instance{
		ID: "inst-1", ScheduledAuditID: "rule-1", AuditID: "audit-1", Status: schedule.InstancePending,
	}, nil)
	f.schedules.On("CompleteInstance", mock.Anything, "inst-1", now).Return(nil)

	_, err := f.service.CompleteAudit(context.Background(), "audit-1")

	require.NoError(t, err)
	f.schedules.AssertExpectations(t)
}

func TestAuditService_RecordResult_TerminalAudit(t *testing.T) {
	f := newAuditServiceFixture(time.Now())

	a := audit.NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", time.Now())
	require.NoError(t, a.Cancel())
	f.audits.On("GetByID", mock.Anything, "audit-1").Return(a, nil)

	err := f.service.RecordResult(context.Background(), "audit-1", audit.Result{ItemID: "item-1", Value: audit.ResultPass})

	var violation *audit.InvariantViolation
	require.ErrorAs(t, err, &violation)
	f.audits.AssertNotCalled(t, "SaveResult", mock.Anything, mock.Anything, mock.Anything)
}
