package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRule(t *testing.T) {
	cases := map[string]Rule{
		"N":     RuleNone,
		"D":     RuleDaily,
		"W":     RuleWeekly,
		"M":     RuleMonthly,
		"Y":     RuleYearly,
		"YEAR":  RuleYearly,
		"none":  RuleNone,
		"daily": RuleDaily,
	}
	for raw, want := range cases {
		got, err := ParseRule(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseRule("fortnightly")
	assert.Error(t, err)
}

func TestNextCycleDailyWeekly(t *testing.T) {
	anchor := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	got, ok := NextCycle(anchor, RuleDaily, 3)
	require.True(t, ok)
	assert.Equal(t, anchor.AddDate(0, 0, 3), got)

	got, ok = NextCycle(anchor, RuleWeekly, 2)
	require.True(t, ok)
	assert.Equal(t, anchor.AddDate(0, 0, 14), got)

	got, ok = NextCycle(anchor, RuleHundredDays, 2)
	require.True(t, ok)
	assert.Equal(t, anchor.AddDate(0, 0, 200), got)
}

func TestNextCycleMonthlySkipsShortMonths(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 10, 30, 0, 0, time.UTC)

	// February has no 31st: reported invalid, never clamped to Feb 29.
	_, ok := NextCycle(anchor, RuleMonthly, 1)
	assert.False(t, ok)

	got, ok := NextCycle(anchor, RuleMonthly, 2)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 31, 10, 30, 0, 0, time.UTC), got)

	_, ok = NextCycle(anchor, RuleMonthly, 3) // April
	assert.False(t, ok)
}

func TestNextCycleYearlyLeapDay(t *testing.T) {
	anchor := date(2024, time.February, 29)

	for _, n := range []int{1, 2, 3} {
		_, ok := NextCycle(anchor, RuleYearly, n)
		assert.False(t, ok, "2024 + %d years is not a leap year", n)
	}

	got, ok := NextCycle(anchor, RuleYearly, 4)
	require.True(t, ok)
	assert.Equal(t, date(2028, time.February, 29), got)
}

func TestNextCyclePreservesTimeOfDay(t *testing.T) {
	anchor := time.Date(2024, time.May, 15, 18, 45, 30, 0, time.UTC)
	got, ok := NextCycle(anchor, RuleMonthly, 1)
	require.True(t, ok)
	assert.Equal(t, 18, got.Hour())
	assert.Equal(t, 45, got.Minute())
	assert.Equal(t, 30, got.Second())
}

func TestNextCycleDeterminism(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	for n := 0; n < 24; n++ {
		first, okFirst := NextCycle(anchor, RuleMonthly, n)
		second, okSecond := NextCycle(anchor, RuleMonthly, n)
		assert.Equal(t, first, second)
		assert.Equal(t, okFirst, okSecond)
	}
}

func TestNextValidSkipsInvalidCandidates(t *testing.T) {
	anchor := date(2024, time.January, 31)
	assert.Equal(t, date(2024, time.March, 31), NextValid(anchor, RuleMonthly))

	leap := date(2024, time.February, 29)
	assert.Equal(t, date(2028, time.February, 29), NextValid(leap, RuleYearly))

	assert.Equal(t, anchor, NextValid(anchor, RuleNone))
}

func TestFitsCycle(t *testing.T) {
	start := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	assert.True(t, FitsCycle(RuleWeekly, start, start.AddDate(0, 0, 7)))
	assert.False(t, FitsCycle(RuleWeekly, start, start.AddDate(0, 0, 10)))
	assert.True(t, FitsCycle(RuleDaily, start, start.Add(24*time.Hour)))
	assert.False(t, FitsCycle(RuleDaily, start, start.Add(25*time.Hour)))
	assert.True(t, FitsCycle(RuleNone, start, start.AddDate(1, 0, 0)))
}

func TestHorizonBounds(t *testing.T) {
	assert.True(t, WithinHorizon(date(2049, time.December, 31)))
	assert.False(t, WithinHorizon(date(2050, time.January, 1)))
	assert.Equal(t, CalendarEndDate, ClampToHorizon(date(2060, time.June, 1)))
	assert.Equal(t, date(2030, time.May, 5), ClampToHorizon(date(2030, time.May, 5)))
}
