package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/pkg/models"
)

// Notifier delivers a due-question digest to one chat
type Notifier interface {
	SendDigest(chatID int64, due int) error
}

type recipientSource interface {
	GetDigestRecipients(ctx context.Context, hour int) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type dueCounter interface {
	CountDueForUser(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Scheduler runs the hourly digest sweep. Digest hours are interpreted in UTC.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     recipientSource
	progress  dueCounter
	now       func() time.Time
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     database.NewUserRepository(),
		progress:  database.NewProgressRepository(),
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.sendDigests)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sendDigests notifies every user whose digest hour matches the current hour
// and who has at least one question due. One failing user never stops the
// sweep.
func (s *Scheduler) sendDigests() {
	ctx := context.Background()
	now := s.now().UTC()

	recipients, err := s.users.GetDigestRecipients(ctx, now.Hour())
	if err != nil {
		logrus.WithError(err).Error("digest recipient lookup failed")
		return
	}

	for _, user := range recipients {
		due, err := s.progress.CountDueForUser(ctx, user.ID, now)
		if err != nil {
			logrus.WithError(err).Warnf("due count failed for user %d", user.ID)
			continue
		}
		if due == 0 {
			continue
		}

		if err := s.notifier.SendDigest(user.TelegramChatID, due); err != nil {
			logrus.WithError(err).Warnf("digest not sent to user %d", user.ID)
		}
	}
}

// RunManualCheck sends a digest to one user immediately, regardless of their
// configured hour.
func (s *Scheduler) RunManualCheck(userID int64) error {
	ctx := context.Background()
	now := s.now().UTC()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TelegramChatID == 0 {
		return fmt.Errorf("user %d has no telegram chat linked", userID)
	}

	due, err := s.progress.CountDueForUser(ctx, user.ID, now)
	if err != nil {
		return err
	}
	if due == 0 {
		return nil
	}
	return s.notifier.SendDigest(user.TelegramChatID, due)
}
