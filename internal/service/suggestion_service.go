package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// TaskSuggestion is the structured suggestion the model must return.
type TaskSuggestion struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	Categories  []string `json:"categories"`
}

// SuggestionService asks a language model for a new task based on the
// user's existing tasks.
type SuggestionService struct {
	client   anthropic.Client
	model    string
	taskRepo *repository.TaskRepository
}

func NewSuggestionService(apiKey, modelName string, taskRepo *repository.TaskRepository) *SuggestionService {
	return &SuggestionService{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:    modelName,
		taskRepo: taskRepo,
	}
}

// Suggest builds a prompt from the user's tasks and parses the model's
// reply as strict JSON. Users with no tasks get no suggestion (nil, nil).
// A malformed reply is surfaced as an error to the caller.
func (s *SuggestionService) Suggest(ctx context.Context, user *model.User) (*TaskSuggestion, error) {
	tasks, err := s.taskRepo.ListByCreator(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	prompt := buildSuggestionPrompt(tasks)

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 300,
		System: []anthropic.TextBlockParam{
			{Text: "You are an intelligent task suggestion assistant."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("suggestion request: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return parseSuggestion(text)
}

func buildSuggestionPrompt(tasks []model.Task) string {
	var sb strings.Builder
	for _, t := range tasks {
		names := make([]string, 0, len(t.Categories))
		for _, c := range t.Categories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&sb, "Task: %s\n", t.Name)
		fmt.Fprintf(&sb, "Description: %s\n", t.Description)
		fmt.Fprintf(&sb, "Due Date: %s\n", t.DueDate.Format("2006-01-02"))
		fmt.Fprintf(&sb, "Categories: %s\n", strings.Join(names, ", "))
	}

	return fmt.Sprintf(
		"Based on the user's previous tasks and patterns, suggest a new task.\n"+
			"Return **only** a JSON object with keys: name, description, due_date, categories.\n\n"+
			"User's Tasks:\n%s", sb.String())
}

// parseSuggestion decodes the model reply, tolerating a markdown code
// fence around the JSON.
func parseSuggestion(text string) (*TaskSuggestion, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var suggestion TaskSuggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestion); err != nil {
		return nil, fmt.Errorf("parse suggestion: %w", err)
	}
	return &suggestion, nil
}
