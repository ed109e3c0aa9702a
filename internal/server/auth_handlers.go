package server

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/internal/auth"
	"github.com/example/drillbot/internal/ratelimit"
	"github.com/example/drillbot/pkg/models"
)

// UserStore is the user persistence surface the account endpoints need
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateNotificationSettings(ctx context.Context, userID int64, enabled bool, hour int, chatID int64) error
}

// AuthHandler handles account registration, login and profile endpoints
type AuthHandler struct {
	users    UserStore
	tokens   *auth.Manager
	signIn   *ratelimit.Limiter
	register *ratelimit.Limiter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserStore, tokens *auth.Manager, signIn, register *ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		signIn:   signIn,
		register: register,
	}
}

// credentialsRequest is the request body for registration and login
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the response for successful authentication
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// notificationRequest is the request body for digest preferences
type notificationRequest struct {
	Enabled        bool  `json:"enabled"`
	Hour           int   `json:"hour"`
	TelegramChatID int64 `json:"telegram_chat_id"`
}

// SignUp creates a new user account
// POST /api/auth/register
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	limit := h.register.Check(c.Context(), "register:"+c.IP())
	if !limit.Allowed {
		sharedMetrics().AuthBlocked.WithLabelValues("register").Inc()
		return tooManyAttempts(c, limit)
	}

	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "valid email address is required",
		})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "password must be at least 8 characters",
		})
	}

	if existing, err := h.users.GetByEmail(c.Context(), req.Email); err == nil && existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "user with this email already exists",
		})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("password hash failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create account",
		})
	}

	user := &models.User{
		Email:               req.Email,
		PasswordHash:        hash,
		NotificationEnabled: true,
		NotificationHour:    9,
	}
	if err := h.users.Create(c.Context(), user); err != nil {
		logrus.WithError(err).Error("user create failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create account",
		})
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		logrus.WithError(err).Error("token generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate token",
		})
	}

	logrus.Infof("user registered: %s", user.Email)
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// SignIn authenticates a user
// POST /api/auth/login
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	limit := h.signIn.Check(c.Context(), "signin:"+c.IP())
	if !limit.Allowed {
		sharedMetrics().AuthBlocked.WithLabelValues("login").Inc()
		return tooManyAttempts(c, limit)
	}

	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.users.GetByEmail(c.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			logrus.WithError(err).Error("login lookup failed")
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		logrus.WithError(err).Error("token generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate token",
		})
	}

	return c.JSON(authResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Context(), userID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
		})
	}
	return c.JSON(user)
}

// UpdateNotifications stores the caller's digest preferences
// PATCH /api/notifications
func (h *AuthHandler) UpdateNotifications(c *fiber.Ctx) error {
	var req notificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Hour < 0 || req.Hour > 23 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "hour must be between 0 and 23",
		})
	}

	if err := h.users.UpdateNotificationSettings(c.Context(), userID(c), req.Enabled, req.Hour, req.TelegramChatID); err != nil {
		logrus.WithError(err).Error("notification settings update failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update settings",
		})
	}
	return c.JSON(fiber.Map{"message": "settings updated"})
}

// tooManyAttempts renders the 429 for a blocked auth attempt, echoing the
// cooldown both as a Retry-After header and in the body.
func tooManyAttempts(c *fiber.Ctx, res ratelimit.Result) error {
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(res.RetryAfter))
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "too many attempts, try again later",
		"retry_after": res.RetryAfter,
	})
}
