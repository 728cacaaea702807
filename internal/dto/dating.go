package dto

import "time"

// CreateDatingRequest creates a shared dating pattern plus its occurrences.
type CreateDatingRequest struct {
	Title         string     `json:"title" validate:"required,max=100"`
	Content       *string    `json:"content,omitempty" validate:"omitempty,max=1000"`
	Location      *string    `json:"location,omitempty" validate:"omitempty,max=100"`
	StartDateTime time.Time  `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time  `json:"endDateTime" validate:"required"`
	RepeatRule    string     `json:"repeatRule" validate:"required"`
	RepeatEndTime *time.Time `json:"repeatEndTime,omitempty"`
}

// UpdateDatingRequest edits one occurrence or a whole series.
type UpdateDatingRequest struct {
	Title         string    `json:"title" validate:"required,max=100"`
	Content       *string   `json:"content,omitempty" validate:"omitempty,max=1000"`
	Location      *string   `json:"location,omitempty" validate:"omitempty,max=100"`
	StartDateTime time.Time `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time `json:"endDateTime" validate:"required"`
}

// DatingResponse is a single dating occurrence in API responses.
type DatingResponse struct {
	ID            string    `json:"id"`
	PatternID     string    `json:"patternId"`
	Title         string    `json:"title"`
	Content       *string   `json:"content,omitempty"`
	Location      *string   `json:"location,omitempty"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
}
