package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User

	query := DB.Rebind("SELECT * FROM users WHERE id = ?")

	if err := DB.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// GetByEmail returns a user by email. The caller distinguishes a missing user
// via errors.Is(err, sql.ErrNoRows).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := DB.Rebind("SELECT * FROM users WHERE email = ?")

	if err := DB.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a new user and fills its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, is_admin, telegram_chat_id, notification_enabled, notification_hour, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	if isPostgres() {
		err := DB.QueryRowContext(ctx, DB.Rebind(query+" RETURNING id"),
			user.Email,
			user.PasswordHash,
			user.IsAdmin,
			user.TelegramChatID,
			user.NotificationEnabled,
			user.NotificationHour,
		).Scan(&user.ID)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		result, err := DB.ExecContext(ctx, query,
			user.Email,
			user.PasswordHash,
			user.IsAdmin,
			user.TelegramChatID,
			user.NotificationEnabled,
			user.NotificationHour,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		user.ID = id
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return nil
}

// UpdateNotificationSettings stores the user's digest preferences
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, userID int64, enabled bool, hour int, chatID int64) error {
	query := `
		UPDATE users
		SET notification_enabled = ?,
			notification_hour = ?,
			telegram_chat_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := DB.ExecContext(ctx, DB.Rebind(query), enabled, hour, chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

// GetDigestRecipients returns users who opted into digests for the given hour
// and have a Telegram chat linked.
func (r *UserRepository) GetDigestRecipients(ctx context.Context, hour int) ([]models.User, error) {
	users := []models.User{}

	query := DB.Rebind(`
		SELECT * FROM users
		WHERE notification_enabled = ? AND notification_hour = ? AND telegram_chat_id != 0
		ORDER BY id
	`)

	if err := DB.SelectContext(ctx, &users, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get digest recipients: %w", err)
	}
	return users, nil
}
