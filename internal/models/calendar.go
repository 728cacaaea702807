package models

// Event tags in the fixed merge order for a calendar date.
const (
	TagDatingSchedule  = "datingSchedule"
	TagMySchedule      = "mySchedule"
	TagPartnerSchedule = "partnerSchedule"
	TagAnniversary     = "anniversary"
)

// CalendarDay pairs a date (YYYY-MM-DD) with its event tags in merge order.
type CalendarDay struct {
	Date   string   `json:"date"`
	Events []string `json:"events"`
}
