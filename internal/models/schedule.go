package models

import "time"

// Schedule is one concrete occurrence of a member's personal schedule.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	PatternID string    `db:"pattern_id" json:"pattern_id"`
	MemberID  string    `db:"member_id" json:"member_id"`
	Title     string    `db:"title" json:"title"`
	Content   *string   `db:"content" json:"content,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
