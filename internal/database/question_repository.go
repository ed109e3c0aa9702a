package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/drillbot/pkg/models"
)

// QuestionRepository handles database operations for questions
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var question models.Question

	query := DB.Rebind("SELECT * FROM questions WHERE id = ?")

	if err := DB.GetContext(ctx, &question, query, id); err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return &question, nil
}

// GetByTopic returns all questions belonging to a topic
func (r *QuestionRepository) GetByTopic(ctx context.Context, topicID int64) ([]models.Question, error) {
	questions := []models.Question{}

	query := DB.Rebind("SELECT * FROM questions WHERE topic_id = ? ORDER BY id")

	if err := DB.SelectContext(ctx, &questions, query, topicID); err != nil {
		return nil, fmt.Errorf("failed to get questions for topic %d: %w", topicID, err)
	}
	return questions, nil
}

// GetByIDs returns the questions matching the given IDs. Missing IDs are
// silently absent from the result.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM questions WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build questions query: %w", err)
	}

	questions := []models.Question{}
	if err := DB.SelectContext(ctx, &questions, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get questions by IDs: %w", err)
	}
	return questions, nil
}

// Upsert inserts a question or updates the existing row with the same topic
// and prompt. The importer relies on this to stay idempotent across runs.
func (r *QuestionRepository) Upsert(ctx context.Context, q *models.Question) error {
	query := `
		INSERT INTO questions (topic_id, category, type, prompt, answer, choices, difficulty, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(topic_id, prompt) DO UPDATE SET
			category = excluded.category,
			type = excluded.type,
			answer = excluded.answer,
			choices = excluded.choices,
			difficulty = excluded.difficulty,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := DB.ExecContext(ctx, DB.Rebind(query),
		q.TopicID,
		q.Category,
		q.Type,
		q.Prompt,
		q.Answer,
		q.Choices,
		q.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert question: %w", err)
	}
	return nil
}

// CountByTopic returns the number of questions in a topic
func (r *QuestionRepository) CountByTopic(ctx context.Context, topicID int64) (int, error) {
	var count int

	query := DB.Rebind("SELECT COUNT(*) FROM questions WHERE topic_id = ?")

	if err := DB.GetContext(ctx, &count, query, topicID); err != nil {
		return 0, fmt.Errorf("failed to count questions for topic %d: %w", topicID, err)
	}
	return count, nil
}
