package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"auditflow/domain/schedule"
	"auditflow/platform/events"
	"auditflow/test/mocks"
)

func newScheduleService(repo *mocks.MockScheduleRepository) ScheduleService {
	return NewScheduleService(repo, schedule.DefaultWindow(), events.NewAuditEventBus())
}

func TestScheduleService_CreateSchedule(t *testing.T) {
	repo := &mocks.MockScheduleRepository{}
	repo.On("SaveRule", mock.Anything, mock.AnythingOfType("*schedule.ScheduledAudit")).Return(nil)
	svc := newScheduleService(repo)

	rule := &schedule.ScheduledAudit{
		LocationID:     "loc-1",
		TemplateID:     "tpl-1",
		Cadence:        schedule.CadenceWeekly,
		StartDate:      time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
		DayOfWeek:      1,
		TimeWindowDays: 3,
		Active:         true,
	}

	created, err := svc.CreateSchedule(context.Background(), rule)

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	// Start dates are normalized to UTC midnight before persistence.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), created.StartDate)
	repo.AssertExpectations(t)
}

func TestScheduleService_CreateSchedule_InvalidRule(t *testing.T) {
	repo := &mocks.MockScheduleRepository{}
	svc := newScheduleService(repo)

	rule := &schedule.ScheduledAudit{
		Cadence:        schedule.CadenceWeekly,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DayOfWeek:      9,
		TimeWindowDays: 3,
	}

	_, err := svc.CreateSchedule(context.Background(), rule)

	var ruleErr *schedule.RuleError
	require.ErrorAs(t, err, &ruleErr)
	repo.AssertNotCalled(t, "SaveRule", mock.Anything, mock.Anything)
}

func TestScheduleService_PreviewOccurrences(t *testing.T) {
	repo := &mocks.MockScheduleRepository{}
	rule := &schedule.ScheduledAudit{
		ID:             "rule-1",
		Cadence:        schedule.CadenceWeekly,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DayOfWeek:      1,
		TimeWindowDays: 3,
		Active:         true,
	}
	repo.On("GetRule", mock.Anything, "rule-1").Return(rule, nil)
	svc := newScheduleService(repo)

	dates, err := svc.PreviewOccurrences(context.Background(), "rule-1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Len(t, dates, 5)
}

func TestScheduleService_RunReconciliation(t *testing.T) {
	asOf := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
	repo := &mocks.MockScheduleRepository{}

	rule := &schedule.ScheduledAudit{
		ID:             "rule-1",
		Cadence:        schedule.CadenceOnce,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TimeWindowDays: 3,
		Active:         true,
	}
	lapsed := &schedule.Instance{
		ID:               "inst-1",
		ScheduledAuditID: "rule-1",
		DueDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:           schedule.InstancePending,
	}

	repo.On("ListActiveRules", mock.Anything).Return([]*schedule.ScheduledAudit{rule}, nil)
	repo.On("ListInstances", mock.Anything, []string{"rule-1"}).Return([]*schedule.Instance{lapsed}, nil)
	repo.On("MarkMissed", mock.Anything, []string{"inst-1"}).Return(nil)

	summary, err := newScheduleService(repo).RunReconciliation(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.RulesProcessed)
	assert.Equal(t, 0, summary.InstancesCreated)
	assert.Equal(t, 1, summary.InstancesMissed)
	assert.Empty(t, summary.InvalidRules)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "CreateInstances", mock.Anything, mock.Anything)
}

func TestScheduleService_RunReconciliation_CreatesInstances(t *testing.T) {
	asOf := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	repo := &mocks.MockScheduleRepository{}

	rule := &schedule.ScheduledAudit{
		ID:             "rule-1",
		Cadence:        schedule.CadenceDaily,
		StartDate:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		TimeWindowDays: 3,
		Active:         true,
	}

	repo.On("ListActiveRules", mock.Anything).Return([]*schedule.ScheduledAudit{rule}, nil)
	repo.On("ListInstances", mock.Anything, []string{"rule-1"}).Return([]*schedule.Instance{}, nil)
	repo.On("CreateInstances", mock.Anything, mock.AnythingOfType("[]schedule.InstanceDraft")).Return(62, nil)

	summary, err := newScheduleService(repo).RunReconciliation(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 62, summary.InstancesCreated)
	assert.Equal(t, 0, summary.InstancesMissed)
	repo.AssertNotCalled(t, "MarkMissed", mock.Anything, mock.Anything)
}

func TestScheduleService_RunReconciliation_ReportsInvalidRules(t *testing.T) {
	repo := &mocks.MockScheduleRepository{}

	broken := &schedule.ScheduledAudit{
		ID:             "rule-broken",
		Cadence:        "sometimes",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TimeWindowDays: 3,
		Active:         true,
	}

	repo.On("ListActiveRules", mock.Anything).Return([]*schedule.ScheduledAudit{broken}, nil)
	repo.On("ListInstances", mock.Anything, []string{"rule-broken"}).Return([]*schedule.Instance{}, nil)

	summary, err := newScheduleService(repo).RunReconciliation(context.Background(), time.Now())

	require.NoError(t, err)
	require.Len(t, summary.InvalidRules, 1)
	assert.Equal(t, "rule-broken", summary.InvalidRules[0].RuleID)
	assert.Zero(t, summary.InstancesCreated)
}
