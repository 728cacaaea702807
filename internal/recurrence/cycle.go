package recurrence

import "time"

// NextCycle computes the date/time n cycles after the anchor under the given
// rule. It is a pure function of its inputs. The boolean reports whether the
// candidate lands on a valid calendar day: a MONTHLY anchor on day 31 has no
// valid occurrence in a 30-day month and a YEARLY anchor on Feb 29 has none
// in a common year. Invalid candidates are never clamped to month end;
// callers skip them and move on to the next n.
func NextCycle(anchor time.Time, rule Rule, n int) (time.Time, bool) {
	switch rule {
	case RuleDaily:
		return anchor.AddDate(0, 0, n), true
	case RuleWeekly:
		return anchor.AddDate(0, 0, 7*n), true
	case RuleHundredDays:
		return anchor.AddDate(0, 0, 100*n), true
	case RuleMonthly:
		candidate := time.Date(anchor.Year(), anchor.Month()+time.Month(n), anchor.Day(),
			anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
		return candidate, candidate.Day() == anchor.Day()
	case RuleYearly:
		candidate := time.Date(anchor.Year()+n, anchor.Month(), anchor.Day(),
			anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
		return candidate, candidate.Day() == anchor.Day() && candidate.Month() == anchor.Month()
	default:
		return anchor, n == 0
	}
}

// NextValid returns the first valid occurrence strictly after the anchor.
// For RuleNone there is no successor and the anchor itself is returned.
func NextValid(anchor time.Time, rule Rule) time.Time {
	if rule == RuleNone {
		return anchor
	}
	for n := 1; ; n++ {
		if candidate, ok := NextCycle(anchor, rule, n); ok {
			return candidate
		}
	}
}

// FitsCycle reports whether a single occurrence spanning [start, end] stays
// inside one cycle of the rule, i.e. it ends no later than the next
// occurrence would begin.
func FitsCycle(rule Rule, start, end time.Time) bool {
	if rule == RuleNone {
		return true
	}
	return !end.After(NextValid(start, rule))
}
