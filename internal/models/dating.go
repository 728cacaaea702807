package models

import "time"

// Dating is one concrete occurrence of a couple's shared dating event.
type Dating struct {
	ID        string    `db:"id" json:"id"`
	PatternID string    `db:"pattern_id" json:"pattern_id"`
	CoupleID  string    `db:"couple_id" json:"couple_id"`
	Title     string    `db:"title" json:"title"`
	Content   *string   `db:"content" json:"content,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
