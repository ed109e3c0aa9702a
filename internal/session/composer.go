package session

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/pkg/models"
)

// Session size bounds. Out-of-range counts are clamped, unparseable counts
// fall back to DefaultCount.
const (
	MinCount     = 1
	MaxCount     = 30
	DefaultCount = 10
)

// Submission size bounds for one results call.
const (
	MinSubmitAnswers = 1
	MaxSubmitAnswers = 20
)

// TypeMixed serves all three question types in one session
const TypeMixed = "mixed"

// RemixTopic is the reserved topic selector for cross-topic review sessions
const RemixTopic = "Remix"

// Composer turns a classified question pool into the ordered list served to
// the client. Order inside a bucket is randomized; only bucket precedence
// (overdue, then new, then scheduled) is guaranteed.
type Composer struct {
	rng *rand.Rand
}

// NewComposer builds a Composer around the given random source. A nil rng is
// seeded from the wall clock; tests pass a fixed seed instead.
func NewComposer(rng *rand.Rand) *Composer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Composer{rng: rng}
}

// Compose classifies the pool against the user's progress records, shuffles
// each bucket independently and concatenates overdue + new + scheduled,
// truncated to count. The input pool is never reordered.
func (c *Composer) Compose(pool []models.Question, records map[int64]*models.Progress, count int, now time.Time) []models.Question {
	b := spaced_repetition.Classify(pool, records, now)
	c.shuffle(b.Overdue)
	c.shuffle(b.New)
	c.shuffle(b.Scheduled)

	out := make([]models.Question, 0, b.Total())
	out = append(out, b.Overdue...)
	out = append(out, b.New...)
	out = append(out, b.Scheduled...)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// Interleave seeds a first session from a pool with no grading history.
// Candidates are grouped by category, each group is shuffled, then a
// round-robin pass pops one question per category per round until count is
// reached or every group is drained. The final sequence is shuffled once
// more, so per-category draw counts stay balanced while the order is free.
func (c *Composer) Interleave(pool []models.Question, count int) []models.Question {
	byCategory := make(map[string][]models.Question)
	var order []string
	for _, q := range pool {
		if _, ok := byCategory[q.Category]; !ok {
			order = append(order, q.Category)
		}
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}

	queues := make([][]models.Question, 0, len(order))
	for _, cat := range order {
		group := byCategory[cat]
		c.shuffle(group)
		queues = append(queues, group)
	}

	out := roundRobin(queues, count)
	c.shuffle(out)
	return out
}

// roundRobin draws one question per non-empty queue per round until n items
// are collected or a full round yields nothing.
func roundRobin(queues [][]models.Question, n int) []models.Question {
	out := make([]models.Question, 0, n)
	for len(out) < n {
		drew := false
		for i := range queues {
			if len(queues[i]) == 0 {
				continue
			}
			out = append(out, queues[i][0])
			queues[i] = queues[i][1:]
			drew = true
			if len(out) == n {
				return out
			}
		}
		if !drew {
			break
		}
	}
	return out
}

func (c *Composer) shuffle(qs []models.Question) {
	c.rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

// ParseCount interprets a raw count query value. Unparseable input falls back
// to DefaultCount, everything else is clamped into [MinCount, MaxCount].
func ParseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultCount
	}
	return ClampCount(n)
}

// ClampCount forces n into the [MinCount, MaxCount] session size range
func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// ParseTypeFilter normalizes a raw type query value to one of the three
// question types; anything else is served as TypeMixed.
func ParseTypeFilter(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.QuestionTypeFlashcard:
		return models.QuestionTypeFlashcard
	case models.QuestionTypeMultipleChoice:
		return models.QuestionTypeMultipleChoice
	case models.QuestionTypeTextInput:
		return models.QuestionTypeTextInput
	default:
		return TypeMixed
	}
}

// FilterByType keeps the pool questions matching typeFilter; TypeMixed keeps
// the whole pool.
func FilterByType(pool []models.Question, typeFilter string) []models.Question {
	if typeFilter == TypeMixed {
		return pool
	}
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if q.Type == typeFilter {
			out = append(out, q)
		}
	}
	return out
}
