package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
)

const maxSuggestions = 3

var ErrEmptyInput = errors.New("ai: nothing to work from")

var bulletPrefix = regexp.MustCompile(`^(?:[•\-*]|\d+[.)])\s*`)

type completer interface {
	Configured() bool
	Complete(ctx context.Context, op string, messages []Message, maxTokens int, temperature float64) (string, error)
}

// Assistant wraps the completion client with the board's prompts.
type Assistant struct {
	client completer
}

func NewAssistant(client completer) *Assistant {
	return &Assistant{client: client}
}

func (a *Assistant) Available() bool {
	return a != nil && a.client != nil && a.client.Configured()
}

func (a *Assistant) GenerateTitle(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrEmptyInput
	}
	if !a.Available() {
		return "", ErrNotConfigured
	}
	return a.client.Complete(ctx, "title", []Message{
		{Role: "system", Content: "You are a helpful assistant that generates concise task titles. Generate only the title with no additional explanation or commentary."},
		{Role: "user", Content: fmt.Sprintf("Generate a concise task title (max 6 words) for the following task description: \"%s\"", description)},
	}, 20, 0.7)
}

func (a *Assistant) GenerateDescription(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyInput
	}
	if !a.Available() {
		return "", ErrNotConfigured
	}
	return a.client.Complete(ctx, "description", []Message{
		{Role: "system", Content: "You are a helpful assistant that generates detailed task descriptions. Generate only the description with no additional explanation or commentary."},
		{Role: "user", Content: fmt.Sprintf("Generate a task description (1-2 sentences) for a task titled: \"%s\"", title)},
	}, 100, 0.7)
}

// SuggestTasks proposes up to three new task titles related to tasks.
func (a *Assistant) SuggestTasks(ctx context.Context, tasks []domain.Task) ([]string, error) {
	if !a.Available() {
		return nil, ErrNotConfigured
	}

	var b strings.Builder
	for i, t := range tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&b, "- %s: %s", t.Title, desc)
	}

	content, err := a.client.Complete(ctx, "suggestions", []Message{
		{Role: "system", Content: "You are a helpful task management assistant that suggests new tasks based on existing ones. Generate only a list of task titles, one per line, with no numbering, bullets, or additional text."},
		{Role: "user", Content: "Here are my current tasks:\n" + b.String() + "\n\nSuggest 3 new related tasks I might want to add."},
	}, 150, 0.8)
	if err != nil {
		return nil, err
	}
	suggestions := ParseSuggestions(content)
	if len(suggestions) == 0 {
		return nil, ErrEmptyCompletion
	}
	return suggestions, nil
}

// ParseSuggestions splits a completion into at most three titles, dropping
// bullets, numbering and blank lines.
func ParseSuggestions(content string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// Categorize always answers with one of columns. Any failure or an answer that
// matches no column falls back to the first column.
func (a *Assistant) Categorize(ctx context.Context, title, description string, columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	if !a.Available() {
		return columns[0]
	}

	list := strings.Join(columns, ", ")
	answer, err := a.client.Complete(ctx, "categorize", []Message{
		{Role: "system", Content: "You are a task categorization assistant. You categorize tasks into one of the following columns: " + list + ". Only respond with the exact name of the column, no other text."},
		{Role: "user", Content: fmt.Sprintf("Categorize this task into one of these columns (%s):\nTitle: %s\nDescription: %s", list, title, description)},
	}, 20, 0.3)
	if err != nil {
		logger.WithContext(ctx).Warn("categorize failed, using first column", "error", err)
		return columns[0]
	}
	return MatchColumn(answer, columns)
}

// MatchColumn returns the column equal to answer ignoring case and surrounding
// quotes or punctuation, or columns[0] when none matches.
func MatchColumn(answer string, columns []string) string {
	answer = strings.Trim(strings.TrimSpace(answer), `"'.`)
	for _, c := range columns {
		if strings.EqualFold(c, answer) {
			return c
		}
	}
	return columns[0]
}
