package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// ResultRepository handles database operations for session results
type ResultRepository struct{}

// NewResultRepository creates a new repository instance
func NewResultRepository() *ResultRepository {
	return &ResultRepository{}
}

// Create records a finished session summary
func (r *ResultRepository) Create(ctx context.Context, res *models.SessionResult) error {
	query := `
		INSERT INTO session_results (user_id, session_id, total, saved, correct, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	if isPostgres() {
		err := DB.QueryRowContext(ctx, DB.Rebind(query+" RETURNING id"),
			res.UserID,
			res.SessionID,
			res.Total,
			res.Saved,
			res.Correct,
		).Scan(&res.ID)
		if err != nil {
			return fmt.Errorf("failed to create session result: %w", err)
		}
	} else {
		result, err := DB.ExecContext(ctx, query,
			res.UserID,
			res.SessionID,
			res.Total,
			res.Saved,
			res.Correct,
		)
		if err != nil {
			return fmt.Errorf("failed to create session result: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		res.ID = id
	}

	res.CreatedAt = time.Now()
	return nil
}

// CountByUser returns how many sessions the user has completed
func (r *ResultRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int

	query := DB.Rebind("SELECT COUNT(*) FROM session_results WHERE user_id = ?")

	if err := DB.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count sessions for user %d: %w", userID, err)
	}
	return count, nil
}

// RecentTimestamps returns completion times since the cutoff, newest first.
// The statistics layer folds these into a daily streak.
func (r *ResultRepository) RecentTimestamps(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	timestamps := []time.Time{}

	query := DB.Rebind(`
		SELECT created_at FROM session_results
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`)

	if err := DB.SelectContext(ctx, &timestamps, query, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get recent sessions for user %d: %w", userID, err)
	}
	return timestamps, nil
}
