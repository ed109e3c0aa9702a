package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/pkg/models"
)

// Config defines the question bank import configuration
type Config struct {
	FilePath         string // Path to the Excel or CSV file
	TopicColumn      string // Column with the topic name
	CategoryColumn   string // Column with the category inside the topic
	TypeColumn       string // Column with the question type
	PromptColumn     string // Column with the question text
	AnswerColumn     string // Column with the expected answer
	ChoicesColumn    string // Column with pipe-separated choices
	DifficultyColumn string // Column with the 1-5 difficulty
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultConfig returns the default import configuration for a file
func DefaultConfig(path string) Config {
	return Config{
		FilePath:         path,
		TopicColumn:      "A",
		CategoryColumn:   "B",
		TypeColumn:       "C",
		PromptColumn:     "D",
		AnswerColumn:     "E",
		ChoicesColumn:    "F",
		DifficultyColumn: "G",
		SheetName:        "Sheet1",
		StartRow:         2, // Skip the header row
	}
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int
	TopicsCreated  int
	Imported       int
	Errors         []string
}

// ImportQuestions imports questions from an Excel or CSV file. Rows sharing a
// topic and prompt with an existing question update it in place.
func ImportQuestions(ctx context.Context, config Config) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

func importFromExcel(ctx context.Context, config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	topics, err := newTopicCache(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := processRow(ctx, row, config, topics, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	result.TopicsCreated = topics.created
	return result, nil
}

func importFromCSV(ctx context.Context, config Config) (*Result, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	topics, err := newTopicCache(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := processRow(ctx, row, config, topics, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	result.TopicsCreated = topics.created
	return result, nil
}

// processRow validates one row and upserts it as a question
func processRow(ctx context.Context, row []string, config Config, topics *topicCache, result *Result) error {
	get := func(column string) string {
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	topicName := get(config.TopicColumn)
	prompt := get(config.PromptColumn)
	answer := get(config.AnswerColumn)
	if topicName == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if answer == "" {
		return fmt.Errorf("answer cannot be empty")
	}

	choices := get(config.ChoicesColumn)
	questionType, err := normalizeType(get(config.TypeColumn), choices)
	if err != nil {
		return err
	}

	category := get(config.CategoryColumn)
	if category == "" {
		category = "general"
	}

	topicID, err := topics.resolve(ctx, topicName)
	if err != nil {
		return err
	}

	question := &models.Question{
		TopicID:    topicID,
		Category:   category,
		Type:       questionType,
		Prompt:     prompt,
		Answer:     answer,
		Choices:    choices,
		Difficulty: parseIntOrDefault(get(config.DifficultyColumn), 1, 5, 3),
	}
	if err := database.NewQuestionRepository().Upsert(ctx, question); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}

	result.Imported++
	return nil
}

// normalizeType maps the type cell to a stored question type. An empty cell
// falls back on the shape of the row, an unknown value fails the row.
func normalizeType(raw, choices string) (string, error) {
	switch strings.ToLower(raw) {
	case models.QuestionTypeFlashcard, models.QuestionTypeMultipleChoice, models.QuestionTypeTextInput:
		return strings.ToLower(raw), nil
	case "":
		if choices != "" {
			return models.QuestionTypeMultipleChoice, nil
		}
		return models.QuestionTypeFlashcard, nil
	default:
		return "", fmt.Errorf("unknown question type %q", raw)
	}
}

// topicCache resolves topic names to IDs, creating topics on first sight
type topicCache struct {
	repo    *database.TopicRepository
	ids     map[string]int64
	created int
}

func newTopicCache(ctx context.Context) (*topicCache, error) {
	repo := database.NewTopicRepository()
	existing, err := repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing topics: %w", err)
	}

	ids := make(map[string]int64, len(existing))
	for _, topic := range existing {
		ids[strings.ToLower(topic.Name)] = topic.ID
	}
	return &topicCache{repo: repo, ids: ids}, nil
}

func (c *topicCache) resolve(ctx context.Context, name string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := c.ids[key]; ok {
		return id, nil
	}

	topic, err := c.repo.GetOrCreateByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, fmt.Errorf("failed to create topic: %w", err)
	}
	c.ids[key] = topic.ID
	c.created++
	return topic.ID, nil
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

func parseIntInRange(s string, min, max int) (int, error) {
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return min, err
	}
	if val < min {
		return min, nil
	}
	if val > max {
		return max, nil
	}
	return val, nil
}

func parseIntOrDefault(s string, min, max, defaultVal int) int {
	if val, err := parseIntInRange(s, min, max); err == nil {
		return val
	}
	return defaultVal
}
