package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusInProgress, true},
		{StatusDraft, StatusCompleted, true},
		{StatusDraft, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusDraft, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAudit_RecordResult(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", now)
	require.Equal(t, StatusDraft, a.Status)

	err := a.RecordResult(Result{ItemID: "item-1", Value: ResultPass})
	require.NoError(t, err)

	// First result moves the draft in progress.
	assert.Equal(t, StatusInProgress, a.Status)
	assert.Equal(t, ResultPass, a.Results["item-1"].Value)

	// Re-recording replaces, not appends.
	err = a.RecordResult(Result{ItemID: "item-1", Value: ResultFail, Comment: "broken latch"})
	require.NoError(t, err)
	assert.Len(t, a.Results, 1)
	assert.Equal(t, ResultFail, a.Results["item-1"].Value)
}

func TestAudit_RecordResult_RejectsUnknownValue(t *testing.T) {
	a := NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", time.Now())

	err := a.RecordResult(Result{ItemID: "item-1", Value: "maybe"})

	var violation *InvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Empty(t, a.Results)
}

func TestAudit_RecordResult_TerminalAuditIsImmutable(t *testing.T) {
	now := time.Now()

	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		t.Run(string(terminal), func(t *testing.T) {
			a := NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", now)
			a.Status = terminal

			err := a.RecordResult(Result{ItemID: "item-1", Value: ResultPass})

			var violation *InvariantViolation
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, "RecordResult", violation.Op)
		})
	}
}

func TestAudit_Complete(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", now)
	require.NoError(t, a.RecordResult(Result{ItemID: "item-1", Value: ResultPass}))

	completedAt := now.Add(30 * time.Minute)
	score := Score{TotalScore: 3, MaxScore: 3, PassPercentage: 100, Passed: true}
	require.NoError(t, a.Complete(score, completedAt))

	assert.Equal(t, StatusCompleted, a.Status)
	assert.True(t, a.IsComplete())
	assert.Equal(t, 100, a.PassPct)
	assert.True(t, a.Passed)
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, completedAt, *a.CompletedAt)
}

func TestAudit_Complete_Twice(t *testing.T) {
	a := NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", time.Now())
	require.NoError(t, a.Complete(Score{}, time.Now()))

	err := a.Complete(Score{}, time.Now())

	var violation *InvariantViolation
	assert.ErrorAs(t, err, &violation)
}

func TestAudit_Cancel(t *testing.T) {
	a := NewAudit("audit-1", "loc-1", "tpl-1", "inspector-1", time.Now())
	require.NoError(t, a.Cancel())
	assert.Equal(t, StatusCancelled, a.Status)

	// Cancelled is terminal.
	assert.Error(t, a.Cancel())
	assert.Error(t, a.Complete(Score{}, time.Now()))
}
