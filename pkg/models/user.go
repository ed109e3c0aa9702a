package models

import "time"

// User represents a registered account
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Email               string    `json:"email" db:"email"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	IsAdmin             bool      `json:"is_admin" db:"is_admin"`
	TelegramChatID      int64     `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"` // 0 when no chat is linked
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for digests (0-23)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
