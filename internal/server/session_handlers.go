package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

// SessionBuilder is the slice of the session service the handlers use
type SessionBuilder interface {
	BuildSession(ctx context.Context, req session.Request) (*session.Plan, error)
	SubmitResults(ctx context.Context, userID int64, sessionID string, answers []models.GradedAnswer) (*session.Submission, error)
}

// SessionHandler handles practice session composition and grading endpoints
type SessionHandler struct {
	sessions SessionBuilder
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionBuilder) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// resultsRequest is the request body for a finished session
type resultsRequest struct {
	SessionID string                `json:"session_id"`
	Answers   []models.GradedAnswer `json:"answers"`
}

// GetSession composes a practice session for the caller
// GET /api/session?topic=...&count=...&type=...&topics=a,b
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "topic is required",
		})
	}

	req := session.Request{
		UserID: userID(c),
		Topic:  topic,
		Count:  session.ParseCount(c.Query("count")),
		Type:   session.ParseTypeFilter(c.Query("type")),
	}
	if raw := c.Query("topics"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Topics = append(req.Topics, name)
			}
		}
	}

	plan, err := h.sessions.BuildSession(c.Context(), req)
	if err != nil {
		if errors.Is(err, session.ErrUnknownTopic) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("topic %q not found", topic),
			})
		}
		logrus.WithError(err).Error("session build failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build session",
		})
	}

	mode := "topic"
	if strings.EqualFold(topic, session.RemixTopic) {
		mode = "remix"
	}
	sharedMetrics().SessionsBuilt.WithLabelValues(mode).Inc()

	return c.JSON(plan)
}

// SubmitResults grades a finished session and reschedules each question
// POST /api/session/results
func (h *SessionHandler) SubmitResults(c *fiber.Ctx) error {
	var req resultsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if len(req.Answers) < session.MinSubmitAnswers || len(req.Answers) > session.MaxSubmitAnswers {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("answers must contain between %d and %d items", session.MinSubmitAnswers, session.MaxSubmitAnswers),
		})
	}
	for _, a := range req.Answers {
		if !spaced_repetition.ValidQuality(a.Quality) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("quality %d for question %d is out of range 0-5", a.Quality, a.QuestionID),
			})
		}
	}

	sub, err := h.sessions.SubmitResults(c.Context(), userID(c), req.SessionID, req.Answers)
	if err != nil {
		logrus.WithError(err).Error("results submission failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to submit results",
		})
	}

	m := sharedMetrics()
	m.ResultsSubmitted.Inc()
	m.AnswersGraded.WithLabelValues("pass").Add(float64(sub.Correct))
	m.AnswersGraded.WithLabelValues("fail").Add(float64(sub.Total - sub.Correct))

	return c.JSON(sub)
}
