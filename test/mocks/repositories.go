package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"auditflow/domain/action"
	"auditflow/domain/audit"
	"auditflow/domain/contracts"
	"auditflow/domain/schedule"
	"auditflow/domain/template"
)

// MockTemplateRepository implements TemplateRepository for testing
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, templateID string) (*template.Template, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*template.Template), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, tpl *template.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepository) ListAll(ctx context.Context) ([]*template.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*template.Template), args.Error(1)
}

// MockAuditRepository implements AuditRepository for testing
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) GetByID(ctx context.Context, auditID string) (*audit.Audit, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Audit), args.Error(1)
}

func (m *MockAuditRepository) Create(ctx context.Context, a *audit.Audit) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAuditRepository) SaveResult(ctx context.Context, auditID string, result audit.Result) error {
	args := m.Called(ctx, auditID, result)
	return args.Error(0)
}

func (m *MockAuditRepository) Complete(ctx context.Context, a *audit.Audit) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAuditRepository) Cancel(ctx context.Context, auditID string) error {
	args := m.Called(ctx, auditID)
	return args.Error(0)
}

func (m *MockAuditRepository) ListCompleted(ctx context.Context, locationID, templateID string, since time.Time) ([]*contracts.CompletedAuditSummary, error) {
	args := m.Called(ctx, locationID, templateID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contracts.CompletedAuditSummary), args.Error(1)
}

// MockActionRepository implements ActionRepository for testing
type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) GetByID(ctx context.Context, actionID string) (*action.Action, error) {
	args := m.Called(ctx, actionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*action.Action), args.Error(1)
}

func (m *MockActionRepository) CreateBatch(ctx context.Context, actions []*action.Action) (int, error) {
	args := m.Called(ctx, actions)
	return args.Int(0), args.Error(1)
}

func (m *MockActionRepository) ListByAudit(ctx context.Context, auditID string) ([]*action.Action, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*action.Action), args.Error(1)
}

func (m *MockActionRepository) ListOpen(ctx context.Context, locationID string) ([]*action.Action, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*action.Action), args.Error(1)
}

func (m *MockActionRepository) Update(ctx context.Context, a *action.Action) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockScheduleRepository implements ScheduleRepository for testing
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetRule(ctx context.Context, ruleID string) (*schedule.ScheduledAudit, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.ScheduledAudit), args.Error(1)
}

func (m *MockScheduleRepository) SaveRule(ctx context.Context, rule *schedule.ScheduledAudit) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockScheduleRepository) ListActiveRules(ctx context.Context) ([]*schedule.ScheduledAudit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.ScheduledAudit), args.Error(1)
}

func (m *MockScheduleRepository) ListInstances(ctx context.Context, ruleIDs []string) ([]*schedule.Instance, error) {
	args := m.Called(ctx, ruleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.Instance), args.Error(1)
}

func (m *MockScheduleRepository) CreateInstances(ctx context.Context, drafts []schedule.InstanceDraft) (int, error) {
	args := m.Called(ctx, drafts)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleRepository) MarkMissed(ctx context.Context, instanceIDs []string) error {
	args := m.Called(ctx, instanceIDs)
	return args.Error(0)
}

func (m *MockScheduleRepository) LinkAudit(ctx context.Context, instanceID, auditID string) error {
	args := m.Called(ctx, instanceID, auditID)
	return args.Error(0)
}

func (m *MockScheduleRepository) CompleteInstance(ctx context.Context, instanceID string, completedAt time.Time) error {
	args := m.Called(ctx, instanceID, completedAt)
	return args.Error(0)
}

func (m *MockScheduleRepository) FindInstanceByAudit(ctx context.Context, auditID string) (*schedule.Instance, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Instance), args.Error(1)
}
