package recurrence

import "time"

// Slot is one concrete start/end produced by expanding a pattern. Time of
// day and duration always match the anchor occurrence.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Expand materialises every occurrence of a pattern from its anchor. The
// anchor itself is always emitted; RuleNone stops there. For repeating rules
// generation walks n = 1, 2, 3, ... skipping candidates that fall on invalid
// calendar days, and stops once a candidate's date passes repeatEnd. The
// repeat end is clamped to the calendar horizon, so the result is finite.
func Expand(rule Rule, repeatEnd time.Time, anchorStart, anchorEnd time.Time) []Slot {
	slots := []Slot{{Start: anchorStart, End: anchorEnd}}
	if rule == RuleNone {
		return slots
	}

	repeatEnd = ClampToHorizon(repeatEnd)
	duration := anchorEnd.Sub(anchorStart)

	for n := 1; ; n++ {
		candidate, ok := NextCycle(anchorStart, rule, n)
		if AfterDate(candidate, repeatEnd) {
			break
		}
		if !ok {
			continue
		}
		slots = append(slots, Slot{Start: candidate, End: candidate.Add(duration)})
	}

	return slots
}

// ExpandDates is Expand for date-only occurrences such as anniversaries.
func ExpandDates(rule Rule, repeatEnd, anchor time.Time) []time.Time {
	slots := Expand(rule, repeatEnd, anchor, anchor)
	dates := make([]time.Time, len(slots))
	for i, slot := range slots {
		dates[i] = DateOf(slot.Start)
	}
	return dates
}
