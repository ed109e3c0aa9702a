package models

import "time"

// Question type variants served in practice sessions.
const (
	QuestionTypeFlashcard      = "flashcard"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTextInput      = "text_input"
)

// Question represents a single interview drill item
type Question struct {
	ID         int64     `json:"id" db:"id"`
	TopicID    int64     `json:"topic_id" db:"topic_id"`
	Category   string    `json:"category" db:"category"` // Sub-area within the topic, e.g. "goroutines"
	Type       string    `json:"type" db:"type"`
	Prompt     string    `json:"prompt" db:"prompt"`
	Answer     string    `json:"answer" db:"answer"`
	Choices    string    `json:"choices,omitempty" db:"choices"` // Pipe-separated distractors for multiple choice
	Difficulty int       `json:"difficulty" db:"difficulty"`     // 1-5 scale of difficulty
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
