package models

import "time"

// GradedAnswer is a single 0-5 self-assessment submitted after answering a question
type GradedAnswer struct {
	QuestionID int64 `json:"question_id"`
	Quality    int   `json:"quality"`
}

// SessionResult records one submitted practice session
type SessionResult struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Total     int       `json:"total" db:"total"`
	Saved     int       `json:"saved" db:"saved"`
	Correct   int       `json:"correct" db:"correct"` // Answers graded 3 or higher
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
