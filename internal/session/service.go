package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

// ErrUnknownTopic is returned when the requested topic does not exist. An
// existing topic with no matching questions is not an error.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic pools change rarely, so they are cached briefly to keep session
// requests off the questions table.
const (
	poolCacheTTL   = 5 * time.Minute
	poolCachePurge = 10 * time.Minute
)

// TopicStore resolves topics from the content store
type TopicStore interface {
	GetByName(ctx context.Context, name string) (*models.Topic, error)
	GetAll(ctx context.Context) ([]models.Topic, error)
}

// QuestionStore loads candidate question pools from the content store
type QuestionStore interface {
	GetByTopic(ctx context.Context, topicID int64) ([]models.Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error)
}

// ProgressStore loads and persists per-user review state
type ProgressStore interface {
	GetByUser(ctx context.Context, userID int64) ([]models.Progress, error)
	GetByUserAndQuestions(ctx context.Context, userID int64, questionIDs []int64) (map[int64]*models.Progress, error)
	Upsert(ctx context.Context, p *models.Progress) error
}

// ResultStore records submitted session summaries
type ResultStore interface {
	Create(ctx context.Context, r *models.SessionResult) error
}

// Service composes practice sessions and applies submitted grades
type Service struct {
	topics    TopicStore
	questions QuestionStore
	progress  ProgressStore
	results   ResultStore
	composer  *Composer
	pools     *cache.Cache
}

// NewService wires the session service to its stores
func NewService(topics TopicStore, questions QuestionStore, progress ProgressStore, results ResultStore, composer *Composer) *Service {
	return &Service{
		topics:    topics,
		questions: questions,
		progress:  progress,
		results:   results,
		composer:  composer,
		pools:     cache.New(poolCacheTTL, poolCachePurge),
	}
}

// Request describes one practice session ask. Count and Type must already be
// normalized via ParseCount and ParseTypeFilter.
type Request struct {
	UserID int64
	Topic  string   // Topic name, or RemixTopic for a cross-topic review
	Count  int
	Type   string
	Topics []string // Remix mode only: restrict to these topic names
}

// Plan is the composed session returned to the client. Count may be lower
// than Requested when the pool runs short; callers detect truncation by
// comparing the two.
type Plan struct {
	SessionID string            `json:"session_id"`
	Topic     string            `json:"topic"`
	Requested int               `json:"requested"`
	Count     int               `json:"count"`
	Questions []models.Question `json:"questions"`
}

// BuildSession resolves the candidate pool for the request and produces the
// ordered question list.
func (s *Service) BuildSession(ctx context.Context, req Request) (*Plan, error) {
	if strings.EqualFold(req.Topic, RemixTopic) {
		return s.buildRemix(ctx, req)
	}
	return s.buildTopic(ctx, req)
}

func (s *Service) buildTopic(ctx context.Context, req Request) (*Plan, error) {
	topic, err := s.topics.GetByName(ctx, req.Topic)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownTopic
		}
		return nil, fmt.Errorf("resolving topic %q: %w", req.Topic, err)
	}

	pool, err := s.topicQuestions(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	pool = FilterByType(pool, req.Type)

	records, err := s.progress.GetByUserAndQuestions(ctx, req.UserID, questionIDs(pool))
	if err != nil {
		return nil, fmt.Errorf("loading progress for topic %q: %w", req.Topic, err)
	}
	return s.finish(req, pool, records), nil
}

func (s *Service) buildRemix(ctx context.Context, req Request) (*Plan, error) {
	recs, err := s.progress.GetByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading study history: %w", err)
	}
	if len(recs) == 0 {
		// Nothing studied yet: a remix over nothing is a valid empty session
		return s.finish(req, nil, nil), nil
	}

	records := make(map[int64]*models.Progress, len(recs))
	ids := make([]int64, 0, len(recs))
	for i := range recs {
		records[recs[i].QuestionID] = &recs[i]
		ids = append(ids, recs[i].QuestionID)
	}

	pool, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading studied questions: %w", err)
	}

	if len(req.Topics) > 0 {
		pool, err = s.filterByTopicNames(ctx, pool, req.Topics)
		if err != nil {
			return nil, err
		}
	}
	pool = FilterByType(pool, req.Type)
	return s.finish(req, pool, records), nil
}

// finish runs the composition pipeline. A pool where no candidate carries a
// progress record is a first session and gets the category interleave
// instead of bucket ordering.
func (s *Service) finish(req Request, pool []models.Question, records map[int64]*models.Progress) *Plan {
	var questions []models.Question
	if len(records) == 0 {
		questions = s.composer.Interleave(pool, req.Count)
	} else {
		questions = s.composer.Compose(pool, records, req.Count, time.Now())
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return &Plan{
		SessionID: uuid.NewString(),
		Topic:     req.Topic,
		Requested: req.Count,
		Count:     len(questions),
		Questions: questions,
	}
}

func (s *Service) topicQuestions(ctx context.Context, topicID int64) ([]models.Question, error) {
	key := fmt.Sprintf("topic:%d", topicID)
	if cached, ok := s.pools.Get(key); ok {
		return cached.([]models.Question), nil
	}
	pool, err := s.questions.GetByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("loading questions for topic %d: %w", topicID, err)
	}
	s.pools.Set(key, pool, cache.DefaultExpiration)
	return pool, nil
}

func (s *Service) filterByTopicNames(ctx context.Context, pool []models.Question, names []string) ([]models.Question, error) {
	topics, err := s.topics.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving remix topics: %w", err)
	}
	wanted := make(map[int64]bool)
	for _, t := range topics {
		for _, name := range names {
			if strings.EqualFold(t.Name, name) {
				wanted[t.ID] = true
			}
		}
	}
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if wanted[q.TopicID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func questionIDs(pool []models.Question) []int64 {
	ids := make([]int64, 0, len(pool))
	for _, q := range pool {
		ids = append(ids, q.ID)
	}
	return ids
}

// Submission reports the outcome of one results call. Saved may be lower
// than Total when individual persistence writes fail; the unsaved items keep
// their computed schedule so the client can still show it.
type Submission struct {
	SessionID string          `json:"session_id,omitempty"`
	Total     int             `json:"total"`
	Saved     int             `json:"saved"`
	Correct   int             `json:"correct"`
	Items     []SubmittedItem `json:"items"`
}

// SubmittedItem is the per-question outcome of a results submission
type SubmittedItem struct {
	QuestionID int64                       `json:"question_id"`
	Saved      bool                        `json:"saved"`
	Schedule   *spaced_repetition.Schedule `json:"schedule"`
}

// SubmitResults applies one SM-2 update per graded answer and upserts the
// resulting progress rows. A failing write skips that item and processing
// continues; the caller validates list length and grade range beforehand.
func (s *Service) SubmitResults(ctx context.Context, userID int64, sessionID string, answers []models.GradedAnswer) (*Submission, error) {
	ids := make([]int64, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	records, err := s.progress.GetByUserAndQuestions(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("loading prior progress: %w", err)
	}

	now := time.Now()
	sub := &Submission{
		SessionID: sessionID,
		Total:     len(answers),
		Items:     make([]SubmittedItem, 0, len(answers)),
	}
	for _, a := range answers {
		prior := spaced_repetition.NewSchedule()
		if rec, ok := records[a.QuestionID]; ok {
			prior = spaced_repetition.Schedule{
				Interval:       rec.Interval,
				Repetition:     rec.Repetition,
				EasinessFactor: rec.EasinessFactor,
			}
		}
		next := spaced_repetition.ComputeSchedule(a.Quality, prior.Interval, prior.Repetition, prior.EasinessFactor, now)
		if a.Quality >= spaced_repetition.PassThreshold {
			sub.Correct++
		}

		rec := records[a.QuestionID]
		if rec == nil {
			rec = &models.Progress{UserID: userID, QuestionID: a.QuestionID}
			records[a.QuestionID] = rec
		}
		rec.Interval = next.Interval
		rec.EasinessFactor = next.EasinessFactor
		rec.Repetition = next.Repetition
		rec.LastQuality = a.Quality
		rec.LastReview = now
		rec.NextReview = next.NextReview

		item := SubmittedItem{QuestionID: a.QuestionID, Schedule: &next}
		if err := s.progress.Upsert(ctx, rec); err != nil {
			logrus.WithError(err).Warnf("progress not saved for question %d", a.QuestionID)
		} else {
			item.Saved = true
			sub.Saved++
		}
		sub.Items = append(sub.Items, item)
	}

	result := &models.SessionResult{
		UserID:    userID,
		SessionID: sessionID,
		Total:     sub.Total,
		Saved:     sub.Saved,
		Correct:   sub.Correct,
	}
	if err := s.results.Create(ctx, result); err != nil {
		logrus.WithError(err).Warn("session result not recorded")
	}
	return sub, nil
}
