package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	ErrSuggestionsNotConfigured = errors.New("task suggestions are not configured")
	ErrSuggestionTextRequired   = errors.New("text is required")
	ErrNoSuggestions            = errors.New("no valid tasks could be suggested from the text")
)

// chatCompleter is the part of the OpenAI client the suggestion service uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SuggestionService turns free text into task suggestions using OpenAI.
type SuggestionService struct {
	client chatCompleter
	model  string
}

// SuggestedTask is a task proposal a client can submit to the create endpoint.
type SuggestedTask struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

// NewSuggestionService creates a SuggestionService. It returns nil when no
// API key is configured.
func NewSuggestionService(apiKey, model string) *SuggestionService {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &SuggestionService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const suggestionPrompt = `You extract actionable tasks from text.

Text:
%s

Respond with a JSON array only, no prose and no code fences:
[
  {
    "name": "short task title",
    "description": "details of the task",
    "priority": 1 for Low, 2 for Medium, 3 for High
  }
]

Return [] when the text contains no tasks.`

// SuggestTasks analyzes text and returns at most constants.MaxSuggestedTasks
// suggestions. Entries without a name are dropped and unknown priorities
// become Medium.
func (s *SuggestionService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s == nil || s.client == nil {
		return nil, ErrSuggestionsNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestionTextRequired
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(suggestionPrompt, text),
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var raw []SuggestedTask
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	suggestions := make([]SuggestedTask, 0, len(raw))
	for _, task := range raw {
		task.Name = strings.TrimSpace(task.Name)
		if task.Name == "" {
			continue
		}
		if !task.Priority.Valid() {
			task.Priority = models.PriorityMedium
		}
		suggestions = append(suggestions, task)
		if len(suggestions) == constants.MaxSuggestedTasks {
			break
		}
	}

	if len(suggestions) == 0 {
		return nil, ErrNoSuggestions
	}

	return suggestions, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
