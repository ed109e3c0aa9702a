package models

import "time"

// Progress tracks a user's recall state for one question using the SM-2 parameters
type Progress struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	QuestionID     int64     `json:"question_id" db:"question_id"`
	Interval       int       `json:"interval" db:"interval"`                 // Current interval in days
	EasinessFactor float64   `json:"easiness_factor" db:"easiness_factor"`   // SM-2 EF parameter
	Repetition     int       `json:"repetition" db:"repetition"`             // Consecutive successful recalls
	LastQuality    int       `json:"last_quality" db:"last_quality"`         // 0-5 rating of last recall
	LastReview     time.Time `json:"last_review" db:"last_review"`
	NextReview     time.Time `json:"next_review" db:"next_review"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
