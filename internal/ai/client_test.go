package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/drillbot/pkg/models"
)

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("", "https://api.openai.com/v1", "gpt-4o-mini"); err == nil {
		t.Fatal("expected an error for empty API key")
	}
}

func TestHint(t *testing.T) {
	var gotAuth string
	var gotReq ChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  think about channel direction  "}}]}`))
	}))
	defer srv.Close()

	client, err := New("test-key", srv.URL, "test-model")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	question := &models.Question{Prompt: "what closes a channel?", Answer: "the sender"}
	hint, err := client.Hint(context.Background(), question)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}

	if hint != "think about channel direction" {
		t.Errorf("hint = %q, want trimmed content", hint)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q, want test-model", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(gotReq.Messages))
	}
	if !strings.Contains(gotReq.Messages[1].Content, question.Prompt) {
		t.Error("user message does not include the question prompt")
	}
}

func TestHintAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer srv.Close()

	client, _ := New("test-key", srv.URL, "test-model")
	if _, err := client.Hint(context.Background(), &models.Question{Prompt: "p"}); err == nil {
		t.Fatal("expected an error from the API error body")
	}
}

func TestHintEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client, _ := New("test-key", srv.URL, "test-model")
	if _, err := client.Hint(context.Background(), &models.Question{Prompt: "p"}); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}
