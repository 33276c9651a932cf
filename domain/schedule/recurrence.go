package schedule

import "time"

// OccurrencesBetween computes the due dates a rule produces inside
// [from, to], further intersected with [rule.StartDate, rule.EndDate]. All
// boundaries are inclusive and all dates are truncated to UTC midnight.
//
// The sequence is ascending and deduplicated, and the same inputs always
// produce the same output. Monthly and quarterly cadences clamp the day of
// month to the month's length rather than rolling into the next month;
// yearly rules started on Feb 29 fall back to Feb 28 in non-leap years.
func OccurrencesBetween(rule *ScheduledAudit, from, to time.Time) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	start := DateOnly(rule.StartDate)
	lo := DateOnly(from)
	if lo.Before(start) {
		lo = start
	}
	hi := DateOnly(to)
	if rule.EndDate != nil {
		if end := DateOnly(*rule.EndDate); end.Before(hi) {
			hi = end
		}
	}
	if hi.Before(lo) {
		return nil, nil
	}

	var dates []time.Time
	switch rule.Cadence {
	case CadenceOnce:
		if !start.Before(lo) && !start.After(hi) {
			dates = append(dates, start)
		}

	case CadenceDaily:
		for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}

	case CadenceWeekly:
		dates = stepped(anchorWeekday(start, rule.DayOfWeek), lo, hi, 7)

	case CadenceBiweekly:
		dates = stepped(anchorWeekday(start, rule.DayOfWeek), lo, hi, 14)

	case CadenceMonthly:
		dates = monthly(start, lo, hi, rule.DayOfMonth, 1)

	case CadenceQuarterly:
		dates = monthly(start, lo, hi, rule.DayOfMonth, 3)

	case CadenceYearly:
		dates = yearly(start, lo, hi)
	}

	return dedupeAscending(dates), nil
}

// DateOnly truncates a time to UTC midnight. All recurrence math happens at
// day granularity.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// anchorWeekday returns the first date on or after start that falls on the
// given weekday (0 = Sunday).
func anchorWeekday(start time.Time, dayOfWeek int) time.Time {
	offset := (dayOfWeek - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, offset)
}

// stepped emits dates from anchor in fixed day steps, skipping forward to
// the first step on or after lo.
func stepped(anchor, lo, hi time.Time, stepDays int) []time.Time {
	if anchor.Before(lo) {
		gapDays := int(lo.Sub(anchor).Hours() / 24)
		steps := gapDays / stepDays
		if gapDays%stepDays != 0 {
			steps++
		}
		anchor = anchor.AddDate(0, 0, steps*stepDays)
	}

	var dates []time.Time
	for d := anchor; !d.After(hi); d = d.AddDate(0, 0, stepDays) {
		dates = append(dates, d)
	}
	return dates
}

// monthly emits one date per stepMonths calendar months, starting from the
// rule's start month, on min(dayOfMonth, days in month).
func monthly(start, lo, hi time.Time, dayOfMonth, stepMonths int) []time.Time {
	var dates []time.Time
	year, month := start.Year(), int(start.Month())

	for {
		day := dayOfMonth
		if dim := daysInMonth(year, time.Month(month)); day > dim {
			day = dim
		}
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if d.After(hi) {
			break
		}
		// The start month's slot may precede the start date itself.
		if !d.Before(start) && !d.Before(lo) {
			dates = append(dates, d)
		}

		month += stepMonths
		for month > 12 {
			month -= 12
			year++
		}
	}
	return dates
}

// yearly emits one date per year on the start date's month and day, clamping
// Feb 29 to Feb 28 in non-leap years.
func yearly(start, lo, hi time.Time) []time.Time {
	var dates []time.Time
	month, day := start.Month(), start.Day()

	for year := start.Year(); ; year++ {
		d := day
		if month == time.February && d == 29 && !isLeapYear(year) {
			d = 28
		}
		occ := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if occ.After(hi) {
			break
		}
		if !occ.Before(lo) {
			dates = append(dates, occ)
		}
	}
	return dates
}

// dedupeAscending drops duplicate dates from an already-ascending sequence.
func dedupeAscending(dates []time.Time) []time.Time {
	if len(dates) < 2 {
		return dates
	}
	out := dates[:1]
	for _, d := range dates[1:] {
		if !d.Equal(out[len(out)-1]) {
			out = append(out, d)
		}
	}
	return out
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
