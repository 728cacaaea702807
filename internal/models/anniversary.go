package models

import (
	"time"

	"github.com/duetday/duetday-api/internal/recurrence"
)

// Anniversary is a single-date occurrence owned by a couple.
type Anniversary struct {
	ID        string              `db:"id" json:"id"`
	PatternID string              `db:"pattern_id" json:"pattern_id"`
	CoupleID  string              `db:"couple_id" json:"couple_id"`
	Title     string              `db:"title" json:"title"`
	Content   *string             `db:"content" json:"content,omitempty"`
	Category  recurrence.Category `db:"category" json:"category"`
	Date      time.Time           `db:"date" json:"date"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}
