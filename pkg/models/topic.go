package models

import "time"

// Topic represents a subject area questions are grouped under, e.g. "Go" or "SQL"
type Topic struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
