package spaced_repetition

import (
	"time"

	"github.com/example/drillbot/pkg/models"
)

// Buckets partitions a question pool by review urgency. Every question of the
// input pool lands in exactly one of the three slices; input order within a
// bucket is preserved.
type Buckets struct {
	Overdue   []models.Question // Has a progress record with next_review at or before now
	New       []models.Question // No progress record yet
	Scheduled []models.Question // Has a progress record with next_review after now
}

// Total returns the number of questions across all three buckets
func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.New) + len(b.Scheduled)
}

// Classify labels each pool question as overdue, new or scheduled using the
// user's progress records keyed by question id. A record whose next review
// falls exactly on now counts as overdue.
func Classify(pool []models.Question, records map[int64]*models.Progress, now time.Time) Buckets {
	var b Buckets
	for _, q := range pool {
		rec, ok := records[q.ID]
		switch {
		case !ok:
			b.New = append(b.New, q)
		case !rec.NextReview.After(now):
			b.Overdue = append(b.Overdue, q)
		default:
			b.Scheduled = append(b.Scheduled, q)
		}
	}
	return b
}
