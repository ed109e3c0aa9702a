package server

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/pkg/models"
)

// QuestionGetter resolves single questions from the content store
type QuestionGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Question, error)
}

// HintProvider produces a short nudge toward a question's answer
type HintProvider interface {
	Hint(ctx context.Context, question *models.Question) (string, error)
}

// HintHandler handles the AI hint endpoint
type HintHandler struct {
	questions QuestionGetter
	hints     HintProvider
}

// NewHintHandler creates a new hint handler. hints may be nil when no AI
// backend is configured; the endpoint then reports 503.
func NewHintHandler(questions QuestionGetter, hints HintProvider) *HintHandler {
	return &HintHandler{questions: questions, hints: hints}
}

// GetHint returns a hint for one question without revealing the answer
// GET /api/questions/:id/hint
func (h *HintHandler) GetHint(c *fiber.Ctx) error {
	if h.hints == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "hints are not configured",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid question id",
		})
	}

	question, err := h.questions.GetByID(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "question not found",
			})
		}
		logrus.WithError(err).Error("question lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load question",
		})
	}

	hint, err := h.hints.Hint(c.Context(), question)
	if err != nil {
		logrus.WithError(err).Warn("hint generation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "hint service unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"question_id": question.ID,
		"hint":        hint,
	})
}
