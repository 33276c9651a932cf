package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weeklyRule(dayOfWeek int, start time.Time) *ScheduledAudit {
	return &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceWeekly,
		StartDate:      start,
		DayOfWeek:      dayOfWeek,
		TimeWindowDays: 3,
		Active:         true,
	}
}

func TestOccurrencesBetween_WeeklyMondays(t *testing.T) {
	// 2024-01-01 is a Monday.
	rule := weeklyRule(1, date(2024, time.January, 1))

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.January, 31))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 8),
		date(2024, time.January, 15),
		date(2024, time.January, 22),
		date(2024, time.January, 29),
	}, dates)
}

func TestOccurrencesBetween_WeeklyAnchorsForward(t *testing.T) {
	// Start on a Monday, schedule for Thursdays: the first occurrence is the
	// first Thursday on or after the start date.
	rule := weeklyRule(4, date(2024, time.January, 1))

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.January, 14))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 4),
		date(2024, time.January, 11),
	}, dates)
}

func TestOccurrencesBetween_BiweeklyKeepsAnchorPhase(t *testing.T) {
	rule := weeklyRule(1, date(2024, time.January, 1))
	rule.Cadence = CadenceBiweekly

	// Query a window that starts mid-cycle: occurrences stay on the
	// anchor's 14-day grid rather than restarting at the window edge.
	dates, err := OccurrencesBetween(rule, date(2024, time.January, 10), date(2024, time.February, 12))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 15),
		date(2024, time.January, 29),
		date(2024, time.February, 12),
	}, dates)
}

func TestOccurrencesBetween_MonthlyClampsMonthEnd(t *testing.T) {
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceMonthly,
		StartDate:      date(2024, time.January, 1),
		DayOfMonth:     31,
		TimeWindowDays: 3,
		Active:         true,
	}

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.April, 1))

	require.NoError(t, err)
	// 2024 is a leap year; February clamps to the 29th, never rolls over.
	assert.Equal(t, []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
	}, dates)
}

func TestOccurrencesBetween_MonthlyClampsFebruaryNonLeap(t *testing.T) {
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceMonthly,
		StartDate:      date(2023, time.January, 1),
		DayOfMonth:     30,
		TimeWindowDays: 3,
	}

	dates, err := OccurrencesBetween(rule, date(2023, time.February, 1), date(2023, time.March, 31))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2023, time.February, 28),
		date(2023, time.March, 30),
	}, dates)
}

func TestOccurrencesBetween_MonthlySkipsSlotBeforeStart(t *testing.T) {
	// Start on the 15th with dayOfMonth 10: the start month's slot precedes
	// the start date and must not be emitted.
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceMonthly,
		StartDate:      date(2024, time.March, 15),
		DayOfMonth:     10,
		TimeWindowDays: 3,
	}

	dates, err := OccurrencesBetween(rule, date(2024, time.March, 1), date(2024, time.May, 31))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.April, 10),
		date(2024, time.May, 10),
	}, dates)
}

func TestOccurrencesBetween_QuarterlySteps(t *testing.T) {
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceQuarterly,
		StartDate:      date(2024, time.January, 1),
		DayOfMonth:     15,
		TimeWindowDays: 3,
	}

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.December, 31))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 15),
		date(2024, time.April, 15),
		date(2024, time.July, 15),
		date(2024, time.October, 15),
	}, dates)
}

func TestOccurrencesBetween_YearlyLeapDayFallsBack(t *testing.T) {
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceYearly,
		StartDate:      date(2024, time.February, 29),
		TimeWindowDays: 3,
	}

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2026, time.December, 31))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.February, 29),
		date(2025, time.February, 28),
		date(2026, time.February, 28),
	}, dates)
}

func TestOccurrencesBetween_Once(t *testing.T) {
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceOnce,
		StartDate:      date(2024, time.June, 15),
		TimeWindowDays: 3,
	}

	inside, err := OccurrencesBetween(rule, date(2024, time.June, 1), date(2024, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.June, 15)}, inside)

	outside, err := OccurrencesBetween(rule, date(2024, time.July, 1), date(2024, time.July, 31))
	require.NoError(t, err)
	assert.Empty(t, outside)
}

func TestOccurrencesBetween_DailyHonorsEndDateInclusive(t *testing.T) {
	end := date(2024, time.January, 5)
	rule := &ScheduledAudit{
		ID:             "rule-1",
		Cadence:        CadenceDaily,
		StartDate:      date(2024, time.January, 3),
		EndDate:        &end,
		TimeWindowDays: 1,
	}

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.January, 31))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 3),
		date(2024, time.January, 4),
		date(2024, time.January, 5),
	}, dates)
}

func TestOccurrencesBetween_EmptyRange(t *testing.T) {
	rule := weeklyRule(1, date(2024, time.June, 1))

	dates, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.February, 1))

	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestOccurrencesBetween_Deterministic(t *testing.T) {
	rule := weeklyRule(3, date(2024, time.January, 1))
	from, to := date(2024, time.January, 1), date(2024, time.June, 30)

	first, err := OccurrencesBetween(rule, from, to)
	require.NoError(t, err)
	second, err := OccurrencesBetween(rule, from, to)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].Before(first[i]), "sequence must be strictly ascending")
	}
}

func TestOccurrencesBetween_TruncatesToUTCMidnight(t *testing.T) {
	nyc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	rule := weeklyRule(1, time.Date(2024, time.January, 1, 18, 30, 0, 0, nyc))

	dates, derr := OccurrencesBetween(rule,
		time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 15, 1, 0, 0, 0, time.UTC))

	require.NoError(t, derr)
	for _, d := range dates {
		assert.Equal(t, time.UTC, d.Location())
		h, m, s := d.Clock()
		assert.Zero(t, h+m+s)
	}
}

func TestOccurrencesBetween_InvalidRule(t *testing.T) {
	rule := weeklyRule(9, date(2024, time.January, 1))

	_, err := OccurrencesBetween(rule, date(2024, time.January, 1), date(2024, time.January, 31))

	assert.Error(t, err)
}

func TestScheduledAudit_Validate(t *testing.T) {
	end := date(2023, time.December, 1)

	tests := []struct {
		name    string
		mutate  func(r *ScheduledAudit)
		wantErr string
	}{
		{name: "valid", mutate: func(r *ScheduledAudit) {}},
		{
			name:    "unknown cadence",
			mutate:  func(r *ScheduledAudit) { r.Cadence = "fortnightly" },
			wantErr: "unknown cadence",
		},
		{
			name:    "missing start date",
			mutate:  func(r *ScheduledAudit) { r.StartDate = time.Time{} },
			wantErr: "start date is required",
		},
		{
			name:    "end before start",
			mutate:  func(r *ScheduledAudit) { r.EndDate = &end },
			wantErr: "before start date",
		},
		{
			name:    "zero time window",
			mutate:  func(r *ScheduledAudit) { r.TimeWindowDays = 0 },
			wantErr: "time window must be positive",
		},
		{
			name:    "day of week out of range",
			mutate:  func(r *ScheduledAudit) { r.DayOfWeek = 7 },
			wantErr: "day of week must be 0-6",
		},
		{
			name: "day of month out of range",
			mutate: func(r *ScheduledAudit) {
				r.Cadence = CadenceMonthly
				r.DayOfMonth = 32
			},
			wantErr: "day of month must be 1-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := weeklyRule(1, date(2024, time.January, 1))
			tt.mutate(rule)

			err := rule.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
