package dto

import "time"

// CreateScheduleRequest creates a schedule pattern plus its occurrence batch.
type CreateScheduleRequest struct {
	Title         string     `json:"title" validate:"required,max=100"`
	Content       *string    `json:"content,omitempty" validate:"omitempty,max=1000"`
	Location      *string    `json:"location,omitempty" validate:"omitempty,max=100"`
	StartDateTime time.Time  `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time  `json:"endDateTime" validate:"required"`
	RepeatRule    string     `json:"repeatRule" validate:"required"`
	RepeatEndTime *time.Time `json:"repeatEndTime,omitempty"`
}

// UpdateScheduleRequest edits one occurrence or a whole series. The repeat
// rule itself is immutable after creation.
type UpdateScheduleRequest struct {
	Title         string    `json:"title" validate:"required,max=100"`
	Content       *string   `json:"content,omitempty" validate:"omitempty,max=1000"`
	Location      *string   `json:"location,omitempty" validate:"omitempty,max=100"`
	StartDateTime time.Time `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time `json:"endDateTime" validate:"required"`
}

// ScheduleResponse is a single occurrence in API responses.
type ScheduleResponse struct {
	ID            string    `json:"id"`
	PatternID     string    `json:"patternId"`
	Title         string    `json:"title"`
	Content       *string   `json:"content,omitempty"`
	Location      *string   `json:"location,omitempty"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
}
