package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/drillbot/pkg/models"
)

// ProgressRepository handles database operations for per-user review state
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// GetByUser returns every progress record the user has accumulated
func (r *ProgressRepository) GetByUser(ctx context.Context, userID int64) ([]models.Progress, error) {
	progress := []models.Progress{}

	query := DB.Rebind("SELECT * FROM progress WHERE user_id = ? ORDER BY question_id")

	if err := DB.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get progress for user %d: %w", userID, err)
	}
	return progress, nil
}

// GetByUserAndQuestions returns the user's progress records for the given
// questions, keyed by question ID. Questions never studied have no entry.
func (r *ProgressRepository) GetByUserAndQuestions(ctx context.Context, userID int64, questionIDs []int64) (map[int64]*models.Progress, error) {
	records := make(map[int64]*models.Progress, len(questionIDs))
	if len(questionIDs) == 0 {
		return records, nil
	}

	query, args, err := sqlx.In("SELECT * FROM progress WHERE user_id = ? AND question_id IN (?)", userID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %w", err)
	}

	rows := []models.Progress{}
	if err := DB.SelectContext(ctx, &rows, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get progress for user %d: %w", userID, err)
	}

	for i := range rows {
		records[rows[i].QuestionID] = &rows[i]
	}
	return records, nil
}

// Upsert writes the review state for one user and question, inserting the row
// on first review and replacing the schedule fields afterwards. Review times
// are stored in UTC.
func (r *ProgressRepository) Upsert(ctx context.Context, p *models.Progress) error {
	query := `
		INSERT INTO progress (user_id, question_id, interval, easiness_factor, repetition, last_quality, last_review, next_review, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, question_id) DO UPDATE SET
			interval = excluded.interval,
			easiness_factor = excluded.easiness_factor,
			repetition = excluded.repetition,
			last_quality = excluded.last_quality,
			last_review = excluded.last_review,
			next_review = excluded.next_review,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := DB.ExecContext(ctx, DB.Rebind(query),
		p.UserID,
		p.QuestionID,
		p.Interval,
		p.EasinessFactor,
		p.Repetition,
		p.LastQuality,
		p.LastReview.UTC(),
		p.NextReview.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	return nil
}

// CountDueForUser returns how many of the user's studied questions are due
// for review at the given time.
func (r *ProgressRepository) CountDueForUser(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int

	query := DB.Rebind("SELECT COUNT(*) FROM progress WHERE user_id = ? AND next_review <= ?")

	if err := DB.GetContext(ctx, &count, query, userID, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count due questions for user %d: %w", userID, err)
	}
	return count, nil
}
