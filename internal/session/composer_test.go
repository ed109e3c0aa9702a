package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/example/drillbot/pkg/models"
)

func drillQuestion(id int64, typ, category string) models.Question {
	return models.Question{ID: id, Type: typ, Category: category}
}

func idSet(qs []models.Question) map[int64]bool {
	s := make(map[int64]bool, len(qs))
	for _, q := range qs {
		s[q.ID] = true
	}
	return s
}

func testComposer() *Composer {
	return NewComposer(rand.New(rand.NewSource(7)))
}

// threeBucketPool builds ids 1-10 overdue, 11-20 new, 21-30 scheduled.
func threeBucketPool(now time.Time) ([]models.Question, map[int64]*models.Progress) {
	var pool []models.Question
	records := map[int64]*models.Progress{}
	for id := int64(1); id <= 30; id++ {
		pool = append(pool, drillQuestion(id, models.QuestionTypeFlashcard, "general"))
		if id <= 10 {
			records[id] = &models.Progress{QuestionID: id, NextReview: now.Add(-time.Hour)}
		} else if id > 20 {
			records[id] = &models.Progress{QuestionID: id, NextReview: now.Add(time.Hour)}
		}
	}
	return pool, records
}

func TestComposeServesOverdueFirst(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	pool, records := threeBucketPool(now)

	got := testComposer().Compose(pool, records, 6, now)

	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	for i, q := range got {
		if q.ID > 10 {
			t.Errorf("position %d holds question %d, want an overdue id (1-10)", i, q.ID)
		}
	}
}

func TestComposeBucketPrefixRanges(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	pool, records := threeBucketPool(now)

	got := testComposer().Compose(pool, records, 25, now)

	if len(got) != 25 {
		t.Fatalf("len = %d, want 25", len(got))
	}
	overdue := idSet(got[:10])
	for id := int64(1); id <= 10; id++ {
		if !overdue[id] {
			t.Errorf("overdue id %d missing from first 10 positions", id)
		}
	}
	fresh := idSet(got[10:20])
	for id := int64(11); id <= 20; id++ {
		if !fresh[id] {
			t.Errorf("new id %d missing from positions 10-19", id)
		}
	}
	for i, q := range got[20:] {
		if q.ID <= 20 {
			t.Errorf("position %d holds question %d, want a scheduled id (21-30)", 20+i, q.ID)
		}
	}
}

func TestComposeReturnsWholePoolWhenShort(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	pool := []models.Question{
		drillQuestion(1, models.QuestionTypeFlashcard, "general"),
		drillQuestion(2, models.QuestionTypeFlashcard, "general"),
	}

	got := testComposer().Compose(pool, nil, 10, now)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestComposeDoesNotReorderInput(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	pool, records := threeBucketPool(now)
	before := make([]int64, len(pool))
	for i, q := range pool {
		before[i] = q.ID
	}

	testComposer().Compose(pool, records, 30, now)

	for i, q := range pool {
		if q.ID != before[i] {
			t.Fatalf("input pool reordered at %d: got %d, want %d", i, q.ID, before[i])
		}
	}
}

func TestInterleaveBalancesCategories(t *testing.T) {
	var pool []models.Question
	id := int64(1)
	for _, cat := range []string{"slices", "maps", "goroutines"} {
		for i := 0; i < 10; i++ {
			pool = append(pool, drillQuestion(id, models.QuestionTypeFlashcard, cat))
			id++
		}
	}

	got := testComposer().Interleave(pool, 9)

	if len(got) != 9 {
		t.Fatalf("len = %d, want 9", len(got))
	}
	perCat := map[string]int{}
	for _, q := range got {
		perCat[q.Category]++
	}
	for _, cat := range []string{"slices", "maps", "goroutines"} {
		if perCat[cat] != 3 {
			t.Errorf("category %q drew %d questions, want 3", cat, perCat[cat])
		}
	}
}

func TestInterleaveUnevenCount(t *testing.T) {
	var pool []models.Question
	id := int64(1)
	for _, cat := range []string{"a", "b", "c"} {
		for i := 0; i < 10; i++ {
			pool = append(pool, drillQuestion(id, models.QuestionTypeFlashcard, cat))
			id++
		}
	}

	got := testComposer().Interleave(pool, 7)

	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	perCat := map[string]int{}
	for _, q := range got {
		perCat[q.Category]++
	}
	for cat, n := range perCat {
		if n < 2 || n > 3 {
			t.Errorf("category %q drew %d questions, want 2 or 3", cat, n)
		}
	}
}

func TestInterleaveDrainsShortPools(t *testing.T) {
	var pool []models.Question
	for i := int64(1); i <= 5; i++ {
		pool = append(pool, drillQuestion(i, models.QuestionTypeFlashcard, "big"))
	}
	pool = append(pool, drillQuestion(6, models.QuestionTypeFlashcard, "tiny"))

	got := testComposer().Interleave(pool, 30)

	if len(got) != 6 {
		t.Fatalf("len = %d, want 6 (whole pool)", len(got))
	}
	if set := idSet(got); !set[6] {
		t.Errorf("tiny category question missing from result")
	}
}

func TestInterleaveEmptyPool(t *testing.T) {
	got := testComposer().Interleave(nil, 10)
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultCount},
		{"abc", DefaultCount},
		{"3.5", DefaultCount},
		{"5", 5},
		{" 12 ", 12},
		{"0", MinCount},
		{"-3", MinCount},
		{"30", 30},
		{"31", MaxCount},
		{"1000", MaxCount},
		{"1", 1},
	}
	for _, tt := range tests {
		if got := ParseCount(tt.raw); got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseTypeFilter(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"flashcard", models.QuestionTypeFlashcard},
		{"FLASHCARD", models.QuestionTypeFlashcard},
		{"multiple_choice", models.QuestionTypeMultipleChoice},
		{"text_input", models.QuestionTypeTextInput},
		{"mixed", TypeMixed},
		{"", TypeMixed},
		{"bogus", TypeMixed},
	}
	for _, tt := range tests {
		if got := ParseTypeFilter(tt.raw); got != tt.want {
			t.Errorf("ParseTypeFilter(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFilterByType(t *testing.T) {
	pool := []models.Question{
		drillQuestion(1, models.QuestionTypeFlashcard, "a"),
		drillQuestion(2, models.QuestionTypeMultipleChoice, "a"),
		drillQuestion(3, models.QuestionTypeTextInput, "a"),
		drillQuestion(4, models.QuestionTypeFlashcard, "b"),
	}

	if got := FilterByType(pool, TypeMixed); len(got) != 4 {
		t.Errorf("mixed filter kept %d questions, want 4", len(got))
	}
	got := FilterByType(pool, models.QuestionTypeFlashcard)
	if len(got) != 2 {
		t.Fatalf("flashcard filter kept %d questions, want 2", len(got))
	}
	for _, q := range got {
		if q.Type != models.QuestionTypeFlashcard {
			t.Errorf("filter leaked question %d of type %q", q.ID, q.Type)
		}
	}
}
