package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// StatisticsRepository aggregates study statistics from live tables
type StatisticsRepository struct{}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{}
}

// streakWindow bounds how far back the streak computation looks
const streakWindow = 90 * 24 * time.Hour

// GetTopicStats returns per-topic aggregates for a user. Topics without
// questions are included with zero counts.
func (r *StatisticsRepository) GetTopicStats(ctx context.Context, userID int64, now time.Time) ([]models.TopicStats, error) {
	stats := []models.TopicStats{}

	query := DB.Rebind(`
		SELECT t.id AS topic_id,
			t.name AS topic_name,
			COUNT(DISTINCT q.id) AS questions,
			COUNT(DISTINCT p.id) AS studied,
			COALESCE(SUM(CASE WHEN p.next_review <= ? THEN 1 ELSE 0 END), 0) AS due,
			COALESCE(AVG(CASE WHEN p.last_quality >= 3 THEN 1.0 WHEN p.last_quality IS NOT NULL THEN 0.0 END), 0) AS accuracy
		FROM topics t
		LEFT JOIN questions q ON q.topic_id = t.id
		LEFT JOIN progress p ON p.question_id = q.id AND p.user_id = ?
		GROUP BY t.id, t.name
		ORDER BY t.name
	`)

	if err := DB.SelectContext(ctx, &stats, query, now.UTC(), userID); err != nil {
		return nil, fmt.Errorf("failed to get topic statistics: %w", err)
	}
	return stats, nil
}

// GetUserStats returns the study overview for one user
func (r *StatisticsRepository) GetUserStats(ctx context.Context, userID int64, now time.Time) (*models.UserStats, error) {
	stats := &models.UserStats{}

	query := DB.Rebind("SELECT COUNT(*) FROM progress WHERE user_id = ?")
	if err := DB.GetContext(ctx, &stats.Studied, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count studied questions: %w", err)
	}

	query = DB.Rebind("SELECT COUNT(*) FROM progress WHERE user_id = ? AND next_review <= ?")
	if err := DB.GetContext(ctx, &stats.Due, query, userID, now.UTC()); err != nil {
		return nil, fmt.Errorf("failed to count due questions: %w", err)
	}

	query = DB.Rebind("SELECT COUNT(*) FROM session_results WHERE user_id = ?")
	if err := DB.GetContext(ctx, &stats.Sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	results := NewResultRepository()
	timestamps, err := results.RecentTimestamps(ctx, userID, now.Add(-streakWindow))
	if err != nil {
		return nil, err
	}
	stats.Streak = streakDays(timestamps, now)

	topics, err := r.GetTopicStats(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	stats.Topics = topics

	return stats, nil
}

// streakDays counts consecutive calendar days with at least one session,
// walking back from today. A day without sessions ends the streak; today
// without sessions falls through to yesterday so an evening gap doesn't
// reset a live streak.
func streakDays(timestamps []time.Time, now time.Time) int {
	days := make(map[string]bool, len(timestamps))
	for _, ts := range timestamps {
		days[ts.UTC().Format("2006-01-02")] = true
	}

	day := now.UTC()
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
