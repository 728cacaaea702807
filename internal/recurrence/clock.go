package recurrence

import "time"

// CalendarEndDate is the last date any occurrence may fall on. Nothing is
// ever generated beyond it, regardless of the requested repeat end.
var CalendarEndDate = time.Date(2049, time.December, 31, 0, 0, 0, 0, time.UTC)

// calendarNextDate is the day after the horizon. The bound can be written
// either as inclusive-of-2049-12-31 or exclusive-of-2050-01-01; both forms
// collapse to a single Before comparison against this sentinel.
var calendarNextDate = CalendarEndDate.AddDate(0, 0, 1)

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// AfterDate reports whether a falls on a later calendar date than b.
func AfterDate(a, b time.Time) bool {
	return DateOf(a).After(DateOf(b))
}

// WithinHorizon reports whether the date is on or before CalendarEndDate.
func WithinHorizon(t time.Time) bool {
	return DateOf(t).Before(calendarNextDate)
}

// ClampToHorizon caps a date at CalendarEndDate.
func ClampToHorizon(t time.Time) time.Time {
	if WithinHorizon(t) {
		return t
	}
	return CalendarEndDate
}
