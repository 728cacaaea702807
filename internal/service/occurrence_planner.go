package service

import (
	"time"

	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
	"github.com/duetday/duetday-api/internal/repository"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

// validateCreateRange checks a new occurrence's span: ordering, horizon and
// the one-cycle cap. The cycle cap applies at creation only.
func validateCreateRange(rule recurrence.Rule, start, end time.Time) error {
	if err := validateEditRange(start, end); err != nil {
		return err
	}
	if !recurrence.FitsCycle(rule, start, end) {
		return appErrors.ErrInvalidCycleSpan
	}
	return nil
}

// validateEditRange checks ordering and the calendar horizon.
func validateEditRange(start, end time.Time) error {
	if end.Before(start) {
		return appErrors.ErrInvalidRange
	}
	if !recurrence.WithinHorizon(end) {
		return appErrors.Clone(appErrors.ErrInvalidRange, "range crosses the calendar horizon")
	}
	return nil
}

// resolveRepeatEnd defaults and validates the declared repeat end date. NONE
// patterns always end on their start date; an absent end defaults to the
// calendar horizon; an explicit end may neither precede the anchor's end nor
// exceed the horizon.
func resolveRepeatEnd(rule recurrence.Rule, anchorStart, anchorEnd time.Time, explicit *time.Time) (time.Time, error) {
	if rule == recurrence.RuleNone {
		return recurrence.DateOf(anchorStart), nil
	}
	if explicit == nil {
		return recurrence.CalendarEndDate, nil
	}
	end := recurrence.DateOf(*explicit)
	if end.Before(recurrence.DateOf(anchorEnd)) {
		return time.Time{}, appErrors.ErrInvalidRepeatEndRange
	}
	if !recurrence.WithinHorizon(end) {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidRepeatEndRange, "repeat end exceeds the calendar horizon")
	}
	return end, nil
}

// splitPattern builds the fresh single-day pattern a detached occurrence is
// re-parented onto.
func splitPattern(template *models.RecurrencePattern, day time.Time) *models.RecurrencePattern {
	return &models.RecurrencePattern{
		OwnerID:         template.OwnerID,
		RepeatStartDate: recurrence.DateOf(day),
		RepeatEndDate:   recurrence.DateOf(day),
		RepeatRule:      recurrence.RuleNone,
		Category:        template.Category,
	}
}

// tightenBounds recomputes a pattern's boundary dates after one of its
// boundary occurrences is edited away. It returns nil when the edited
// occurrence was interior, or when nothing remains: the declared range must
// never include a date with no occurrence.
func tightenBounds(pattern *models.RecurrencePattern, editedDate time.Time, remaining []time.Time) *repository.PatternBounds {
	onStart := recurrence.SameDate(editedDate, pattern.RepeatStartDate)
	onEnd := recurrence.SameDate(editedDate, pattern.RepeatEndDate)
	if !onStart && !onEnd {
		return nil
	}
	if len(remaining) == 0 {
		return nil
	}

	min := recurrence.DateOf(remaining[0])
	max := min
	for _, d := range remaining[1:] {
		day := recurrence.DateOf(d)
		if day.Before(min) {
			min = day
		}
		if day.After(max) {
			max = day
		}
	}
	return &repository.PatternBounds{Start: min, End: max}
}

// minuteDelta returns the whole-minute offset between two instants.
func minuteDelta(from, to time.Time) int64 {
	return int64(to.Sub(from) / time.Minute)
}

// dayDelta returns the whole-day offset between two calendar dates.
func dayDelta(from, to time.Time) int {
	return int(recurrence.DateOf(to).Sub(recurrence.DateOf(from)) / (24 * time.Hour))
}
