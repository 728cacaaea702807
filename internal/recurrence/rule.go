package recurrence

import (
	"fmt"
	"strings"
)

// Rule enumerates the supported repeat cadences.
type Rule string

const (
	RuleNone        Rule = "NONE"
	RuleDaily       Rule = "DAILY"
	RuleWeekly      Rule = "WEEKLY"
	RuleMonthly     Rule = "MONTHLY"
	RuleYearly      Rule = "YEARLY"
	RuleHundredDays Rule = "HUNDRED_DAYS"
)

// ParseRule resolves a wire code (N/D/W/M/Y) or a full rule name.
func ParseRule(raw string) (Rule, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "N", "NONE":
		return RuleNone, nil
	case "D", "DAILY":
		return RuleDaily, nil
	case "W", "WEEKLY":
		return RuleWeekly, nil
	case "M", "MONTHLY":
		return RuleMonthly, nil
	case "Y", "YEAR", "YEARLY":
		return RuleYearly, nil
	case "HUNDRED_DAYS":
		return RuleHundredDays, nil
	default:
		return "", fmt.Errorf("unknown repeat rule %q", raw)
	}
}

// Category labels anniversary kinds.
type Category string

const (
	CategoryBirth     Category = "BIRTH"
	CategoryFirstDate Category = "FIRST_DATE"
	CategoryOther     Category = "OTHER"
)
