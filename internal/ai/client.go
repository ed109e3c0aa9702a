package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// Client calls an OpenAI-compatible chat completions API
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// New creates a new chat completions client. baseURL points at the API root,
// e.g. "https://api.openai.com/v1".
func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	return &Client{
		apiKey:      apiKey,
		apiURL:      strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:       model,
		maxTokens:   100,
		temperature: 0.7,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Hint produces a short nudge toward the question's answer without giving
// the answer away.
func (c *Client) Hint(ctx context.Context, question *models.Question) (string, error) {
	prompt := fmt.Sprintf(
		"The candidate is stuck on this interview question:\n\n%s\n\nThe expected answer is: %s\n\nGive a single-sentence hint that points them in the right direction without revealing the answer.",
		question.Prompt, question.Answer,
	)

	messages := []Message{
		{Role: "system", Content: "You are a concise IT interview coach. You help candidates recall answers on their own, so you never state the answer outright."},
		{Role: "user", Content: prompt},
	}

	return c.chat(ctx, messages)
}

func (c *Client) chat(ctx context.Context, messages []Message) (string, error) {
	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
