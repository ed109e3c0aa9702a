package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/drillbot/pkg/models"
)

type fakeQuestionGetter struct {
	questions map[int64]*models.Question
}

func (f *fakeQuestionGetter) GetByID(_ context.Context, id int64) (*models.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, fmt.Errorf("question lookup: %w", sql.ErrNoRows)
	}
	return q, nil
}

type fakeHints struct {
	hint string
	err  error
}

func (f *fakeHints) Hint(_ context.Context, _ *models.Question) (string, error) {
	return f.hint, f.err
}

func newHintApp(questions *fakeQuestionGetter, hints HintProvider) *fiber.App {
	handler := NewHintHandler(questions, hints)
	app := fiber.New()
	app.Get("/api/questions/:id/hint", withUser(7), handler.GetHint)
	return app
}

func TestGetHint(t *testing.T) {
	questions := &fakeQuestionGetter{questions: map[int64]*models.Question{
		3: {ID: 3, Prompt: "what closes a channel?"},
	}}
	app := newHintApp(questions, &fakeHints{hint: "think about the sender side"})

	req := httptest.NewRequest("GET", "/api/questions/3/hint", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		QuestionID int64  `json:"question_id"`
		Hint       string `json:"hint"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.QuestionID != 3 || body.Hint == "" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestGetHintUnknownQuestion(t *testing.T) {
	app := newHintApp(&fakeQuestionGetter{questions: map[int64]*models.Question{}}, &fakeHints{hint: "x"})

	req := httptest.NewRequest("GET", "/api/questions/99/hint", nil)
	if resp, _ := app.Test(req); resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetHintBadID(t *testing.T) {
	app := newHintApp(&fakeQuestionGetter{questions: map[int64]*models.Question{}}, &fakeHints{hint: "x"})

	for _, path := range []string{"/api/questions/abc/hint", "/api/questions/0/hint"} {
		req := httptest.NewRequest("GET", path, nil)
		if resp, _ := app.Test(req); resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestGetHintNotConfigured(t *testing.T) {
	app := newHintApp(&fakeQuestionGetter{questions: map[int64]*models.Question{}}, nil)

	req := httptest.NewRequest("GET", "/api/questions/3/hint", nil)
	if resp, _ := app.Test(req); resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestGetHintUpstreamFailure(t *testing.T) {
	questions := &fakeQuestionGetter{questions: map[int64]*models.Question{
		3: {ID: 3, Prompt: "what closes a channel?"},
	}}
	app := newHintApp(questions, &fakeHints{err: errors.New("model overloaded")})

	req := httptest.NewRequest("GET", "/api/questions/3/hint", nil)
	if resp, _ := app.Test(req); resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}
