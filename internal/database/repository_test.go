package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/drillbot/pkg/models"
)

func TestMain(m *testing.M) {
	if err := Connect("sqlite", ":memory:"); err != nil {
		panic(err)
	}
	code := m.Run()
	Close()
	os.Exit(code)
}

func mustCreateTopic(t *testing.T, name string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Name: name}
	require.NoError(t, NewTopicRepository().Create(context.Background(), topic))
	require.NotZero(t, topic.ID)
	return topic
}

func mustCreateUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", NotificationEnabled: true}
	require.NoError(t, NewUserRepository().Create(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func mustCreateQuestion(t *testing.T, topicID int64, prompt string) *models.Question {
	t.Helper()
	q := &models.Question{
		TopicID:    topicID,
		Category:   "general",
		Type:       models.QuestionTypeFlashcard,
		Prompt:     prompt,
		Answer:     "answer",
		Difficulty: 1,
	}
	require.NoError(t, NewQuestionRepository().Upsert(context.Background(), q))
	loaded, err := NewQuestionRepository().GetByTopic(context.Background(), topicID)
	require.NoError(t, err)
	for i := range loaded {
		if loaded[i].Prompt == prompt {
			return &loaded[i]
		}
	}
	t.Fatalf("question %q not found after upsert", prompt)
	return nil
}

func TestTopicRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTopicRepository()

	created := mustCreateTopic(t, "Go Basics")

	byName, err := repo.GetByName(ctx, "Go Basics")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", byID.Name)
}

func TestTopicRepositoryMissingIsNoRows(t *testing.T) {
	_, err := NewTopicRepository().GetByName(context.Background(), "No Such Topic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestTopicRepositoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewTopicRepository()

	first, err := repo.GetOrCreateByName(ctx, "Concurrency")
	require.NoError(t, err)
	second, err := repo.GetOrCreateByName(ctx, "Concurrency")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestQuestionRepositoryUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository()
	topic := mustCreateTopic(t, "SQL Upserts")

	q := &models.Question{
		TopicID:    topic.ID,
		Category:   "general",
		Type:       models.QuestionTypeFlashcard,
		Prompt:     "What does ON CONFLICT do?",
		Answer:     "first answer",
		Difficulty: 2,
	}
	require.NoError(t, repo.Upsert(ctx, q))

	q.Answer = "revised answer"
	q.Difficulty = 3
	require.NoError(t, repo.Upsert(ctx, q))

	questions, err := repo.GetByTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "revised answer", questions[0].Answer)
	assert.Equal(t, 3, questions[0].Difficulty)

	count, err := repo.CountByTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQuestionRepositoryGetByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository()
	topic := mustCreateTopic(t, "Lookup Sets")

	first := mustCreateQuestion(t, topic.ID, "first prompt")
	_ = mustCreateQuestion(t, topic.ID, "second prompt")
	third := mustCreateQuestion(t, topic.ID, "third prompt")

	questions, err := repo.GetByIDs(ctx, []int64{first.ID, third.ID, 999999})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, first.ID, questions[0].ID)
	assert.Equal(t, third.ID, questions[1].ID)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProgressRepositoryUpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository()
	topic := mustCreateTopic(t, "Progress Writes")
	user := mustCreateUser(t, "progress@example.com")
	q := mustCreateQuestion(t, topic.ID, "progress prompt")

	now := time.Now().UTC().Truncate(time.Second)
	rec := &models.Progress{
		UserID:         user.ID,
		QuestionID:     q.ID,
		Interval:       1,
		EasinessFactor: 2.5,
		Repetition:     1,
		LastQuality:    4,
		LastReview:     now,
		NextReview:     now.AddDate(0, 0, 1),
	}
	require.NoError(t, repo.Upsert(ctx, rec))

	records, err := repo.GetByUserAndQuestions(ctx, user.ID, []int64{q.ID})
	require.NoError(t, err)
	require.Contains(t, records, q.ID)
	assert.Equal(t, 1, records[q.ID].Repetition)
	assert.InDelta(t, 2.5, records[q.ID].EasinessFactor, 1e-9)

	// Second review replaces the schedule without creating a second row
	rec.Interval = 6
	rec.Repetition = 2
	rec.EasinessFactor = 2.6
	rec.NextReview = now.AddDate(0, 0, 6)
	require.NoError(t, repo.Upsert(ctx, rec))

	all, err := repo.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 6, all[0].Interval)
	assert.Equal(t, 2, all[0].Repetition)
}

func TestProgressRepositoryCountDue(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository()
	topic := mustCreateTopic(t, "Due Counting")
	user := mustCreateUser(t, "due@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	rows := []struct {
		prompt string
		next   time.Time
	}{
		{"overdue prompt", now.Add(-time.Hour)},
		{"boundary prompt", now}, // due exactly now counts as due
		{"scheduled prompt", now.AddDate(0, 0, 3)},
	}
	for _, row := range rows {
		q := mustCreateQuestion(t, topic.ID, row.prompt)
		require.NoError(t, repo.Upsert(ctx, &models.Progress{
			UserID:         user.ID,
			QuestionID:     q.ID,
			Interval:       1,
			EasinessFactor: 2.5,
			LastReview:     now.AddDate(0, 0, -1),
			NextReview:     row.next,
		}))
	}

	count, err := repo.CountDueForUser(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created := mustCreateUser(t, "roundtrip@example.com")

	byEmail, err := repo.GetByEmail(ctx, "roundtrip@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "x", byEmail.PasswordHash)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	dup := &models.User{Email: "roundtrip@example.com", PasswordHash: "y"}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestUserRepositoryDigestRecipients(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	linked := mustCreateUser(t, "linked@example.com")
	require.NoError(t, repo.UpdateNotificationSettings(ctx, linked.ID, true, 6, 1001))

	muted := mustCreateUser(t, "muted@example.com")
	require.NoError(t, repo.UpdateNotificationSettings(ctx, muted.ID, false, 6, 1002))

	otherHour := mustCreateUser(t, "otherhour@example.com")
	require.NoError(t, repo.UpdateNotificationSettings(ctx, otherHour.ID, true, 7, 1003))

	// Never linked a chat
	_ = mustCreateUser(t, "unlinked@example.com")

	recipients, err := repo.GetDigestRecipients(ctx, 6)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, linked.ID, recipients[0].ID)
}

func TestResultRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository()
	user := mustCreateUser(t, "results@example.com")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.SessionResult{
			UserID:    user.ID,
			SessionID: "s",
			Total:     10,
			Saved:     10,
			Correct:   7 + i,
		}))
	}

	count, err := repo.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	timestamps, err := repo.RecentTimestamps(ctx, user.ID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, timestamps, 3)
}

func TestStatisticsRepositoryUserStats(t *testing.T) {
	ctx := context.Background()
	topic := mustCreateTopic(t, "Stats Aggregation")
	user := mustCreateUser(t, "stats@example.com")

	passed := mustCreateQuestion(t, topic.ID, "stats passed")
	failed := mustCreateQuestion(t, topic.ID, "stats failed")
	_ = mustCreateQuestion(t, topic.ID, "stats untouched")

	now := time.Now().UTC().Truncate(time.Second)
	progress := NewProgressRepository()
	require.NoError(t, progress.Upsert(ctx, &models.Progress{
		UserID: user.ID, QuestionID: passed.ID,
		Interval: 6, EasinessFactor: 2.6, Repetition: 2,
		LastQuality: 5, LastReview: now, NextReview: now.AddDate(0, 0, 6),
	}))
	require.NoError(t, progress.Upsert(ctx, &models.Progress{
		UserID: user.ID, QuestionID: failed.ID,
		Interval: 1, EasinessFactor: 2.18, Repetition: 0,
		LastQuality: 2, LastReview: now, NextReview: now.Add(-time.Hour),
	}))

	require.NoError(t, NewResultRepository().Create(ctx, &models.SessionResult{
		UserID: user.ID, SessionID: "s1", Total: 2, Saved: 2, Correct: 1,
	}))

	stats, err := NewStatisticsRepository().GetUserStats(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Studied)
	assert.Equal(t, 1, stats.Due)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 1, stats.Streak)

	var found *models.TopicStats
	for i := range stats.Topics {
		if stats.Topics[i].TopicID == topic.ID {
			found = &stats.Topics[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 3, found.Questions)
	assert.Equal(t, 2, found.Studied)
	assert.Equal(t, 1, found.Due)
	assert.InDelta(t, 0.5, found.Accuracy, 1e-9)
}

func TestStreakDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	day := func(offset int, hour int) time.Time {
		return time.Date(2025, 3, 10+offset, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		timestamps []time.Time
		want       int
	}{
		{"no sessions", nil, 0},
		{"today only", []time.Time{day(0, 9)}, 1},
		{"today and yesterday", []time.Time{day(0, 9), day(-1, 22)}, 2},
		{"streak alive without a session today", []time.Time{day(-1, 9), day(-2, 9)}, 2},
		{"gap resets", []time.Time{day(0, 9), day(-2, 9)}, 1},
		{"multiple sessions one day", []time.Time{day(0, 9), day(0, 15), day(-1, 9)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, streakDays(tt.timestamps, now))
		})
	}
}
