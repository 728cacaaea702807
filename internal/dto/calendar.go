package dto

import "github.com/duetday/duetday-api/internal/models"

// CalendarDateResponse is the merged per-date calendar view.
type CalendarDateResponse struct {
	Schedules []models.CalendarDay `json:"schedules"`
}
