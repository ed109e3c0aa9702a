package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// TopicRepository handles database operations for topics
type TopicRepository struct{}

// NewTopicRepository creates a new repository instance
func NewTopicRepository() *TopicRepository {
	return &TopicRepository{}
}

// GetAll returns all topics ordered by name
func (r *TopicRepository) GetAll(ctx context.Context) ([]models.Topic, error) {
	topics := []models.Topic{}

	query := "SELECT * FROM topics ORDER BY name"

	if err := DB.SelectContext(ctx, &topics, query); err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	return topics, nil
}

// GetByID returns a topic by ID
func (r *TopicRepository) GetByID(ctx context.Context, topicID int64) (*models.Topic, error) {
	var topic models.Topic

	query := DB.Rebind("SELECT * FROM topics WHERE id = ?")

	if err := DB.GetContext(ctx, &topic, query, topicID); err != nil {
		return nil, fmt.Errorf("failed to get topic %d: %w", topicID, err)
	}
	return &topic, nil
}

// GetByName returns a topic by its exact name. The caller distinguishes a
// missing topic via errors.Is(err, sql.ErrNoRows).
func (r *TopicRepository) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	var topic models.Topic

	query := DB.Rebind("SELECT * FROM topics WHERE name = ?")

	if err := DB.GetContext(ctx, &topic, query, name); err != nil {
		return nil, fmt.Errorf("failed to get topic %q: %w", name, err)
	}
	return &topic, nil
}

// Create inserts a new topic and fills its ID
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	query := `
		INSERT INTO topics (name, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	if isPostgres() {
		err := DB.QueryRowContext(ctx, DB.Rebind(query+" RETURNING id"), topic.Name).Scan(&topic.ID)
		if err != nil {
			return fmt.Errorf("failed to create topic: %w", err)
		}
	} else {
		result, err := DB.ExecContext(ctx, query, topic.Name)
		if err != nil {
			return fmt.Errorf("failed to create topic: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		topic.ID = id
	}

	topic.CreatedAt = time.Now()
	topic.UpdatedAt = time.Now()
	return nil
}

// GetOrCreateByName resolves a topic by name, creating it when absent.
// Used by the question bank importer.
func (r *TopicRepository) GetOrCreateByName(ctx context.Context, name string) (*models.Topic, error) {
	topic, err := r.GetByName(ctx, name)
	if err == nil {
		return topic, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	created := &models.Topic{Name: name}
	if err := r.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
