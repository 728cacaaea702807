package dto

// CreateAnniversaryRequest creates an anniversary pattern. Only NONE and
// YEAR repeats can be requested; the hundred-day cadence is reserved for
// the couple-connection bootstrap.
type CreateAnniversaryRequest struct {
	Title      string  `json:"title" validate:"required,max=100"`
	Content    *string `json:"content,omitempty" validate:"omitempty,max=1000"`
	RepeatRule string  `json:"repeatRule" validate:"required"`
	Date       string  `json:"date" validate:"required"`
}

// UpdateAnniversaryRequest edits one occurrence or a whole series.
type UpdateAnniversaryRequest struct {
	Title   string  `json:"title" validate:"required,max=100"`
	Content *string `json:"content,omitempty" validate:"omitempty,max=1000"`
	Date    string  `json:"date" validate:"required"`
}

// AnniversaryResponse is a single anniversary occurrence.
type AnniversaryResponse struct {
	ID        string  `json:"id"`
	PatternID string  `json:"patternId"`
	Title     string  `json:"title"`
	Content   *string `json:"content,omitempty"`
	Category  string  `json:"category"`
	Date      string  `json:"date"`
}

// AnniversaryDatesResponse lists the deduplicated anniversary dates.
type AnniversaryDatesResponse struct {
	AnniversaryDates []string `json:"anniversaryDates"`
}
