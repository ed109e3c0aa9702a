package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/pkg/models"
)

// StatsProvider aggregates study statistics for one user
type StatsProvider interface {
	GetUserStats(ctx context.Context, userID int64, now time.Time) (*models.UserStats, error)
}

// StatsHandler handles the study statistics endpoint
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats returns the caller's study overview
// GET /api/stats
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.stats.GetUserStats(c.Context(), userID(c), time.Now())
	if err != nil {
		logrus.WithError(err).Error("stats aggregation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load statistics",
		})
	}
	return c.JSON(stats)
}
