package models

// TopicStats aggregates a user's study state within one topic
type TopicStats struct {
	TopicID   int64   `json:"topic_id" db:"topic_id"`
	TopicName string  `json:"topic_name" db:"topic_name"`
	Questions int     `json:"questions" db:"questions"`
	Studied   int     `json:"studied" db:"studied"`
	Due       int     `json:"due" db:"due"`
	Accuracy  float64 `json:"accuracy" db:"accuracy"` // Share of answers graded 3 or higher
}

// UserStats is the per-user overview served by the stats endpoint
type UserStats struct {
	Studied  int          `json:"studied"`
	Due      int          `json:"due"`
	Sessions int          `json:"sessions"`
	Streak   int          `json:"streak"` // Consecutive calendar days with at least one session
	Topics   []TopicStats `json:"topics"`
}
