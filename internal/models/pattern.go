package models

import (
	"time"

	"github.com/duetday/duetday-api/internal/recurrence"
)

// RecurrencePattern is the rule record shared by a family of occurrences.
// OwnerID is an opaque key (member or couple id) used only for scoping.
type RecurrencePattern struct {
	ID              string               `db:"id" json:"id"`
	OwnerID         string               `db:"owner_id" json:"owner_id"`
	RepeatStartDate time.Time            `db:"repeat_start_date" json:"repeat_start_date"`
	RepeatEndDate   time.Time            `db:"repeat_end_date" json:"repeat_end_date"`
	RepeatRule      recurrence.Rule      `db:"repeat_rule" json:"repeat_rule"`
	Category        *recurrence.Category `db:"category" json:"category,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// ShiftDates moves the pattern range by whole days. Single-day NONE patterns
// keep start and end in lockstep. HUNDRED_DAYS patterns never move: the
// hundred-day series is always counted from the couple's original first-met
// date, whatever later edits do to individual occurrences.
func (p *RecurrencePattern) ShiftDates(dayDiff int) {
	if p.RepeatRule == recurrence.RuleHundredDays {
		return
	}
	p.RepeatStartDate = p.RepeatStartDate.AddDate(0, 0, dayDiff)
	if p.RepeatRule == recurrence.RuleNone {
		p.RepeatEndDate = p.RepeatEndDate.AddDate(0, 0, dayDiff)
	}
}
