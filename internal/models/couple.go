package models

import "time"

// Couple connects two members and anchors their shared events.
type Couple struct {
	ID        string    `db:"id" json:"id"`
	FirstDate time.Time `db:"first_date" json:"first_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
