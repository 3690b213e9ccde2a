package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qudsystem/storybook-backend/internal/models"
)

const storySystemPrompt = `You are a children's story author. Write warm, simple stories for readers aged 4 to 8. Keep each page to two or three short sentences. Respond only with JSON.`

// GenerateStory produces a titled story with page texts and image prompts
// from a child's idea.
func (c *Client) GenerateStory(ctx context.Context, prompt string) (*models.StoryDraft, error) {
	payload := map[string]any{
		"systemInstruction": content{Parts: []part{{Text: storySystemPrompt}}},
		"contents": userContent(fmt.Sprintf(
			"Write a story about: %s\nReturn JSON with fields: title (string), pages (array of 4-6 objects with text and imagePrompt). imagePrompt describes the illustration for that page in one sentence.",
			strings.TrimSpace(prompt),
		)),
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"temperature":      0.9,
		},
	}

	resp, err := c.generate(ctx, c.textModel, payload)
	if err != nil {
		return nil, err
	}
	text, err := resp.firstText()
	if err != nil {
		return nil, err
	}

	var draft models.StoryDraft
	if err := json.Unmarshal([]byte(extractJSONPayload(text)), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", ErrInvalidResponse)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	pages := draft.Pages[:0]
	for _, page := range draft.Pages {
		page.Text = strings.TrimSpace(page.Text)
		page.ImagePrompt = strings.TrimSpace(page.ImagePrompt)
		if page.Text != "" {
			pages = append(pages, page)
		}
	}
	draft.Pages = pages

	if draft.Title == "" || len(draft.Pages) == 0 {
		return nil, fmt.Errorf("story is missing title or pages: %w", ErrInvalidResponse)
	}

	return &draft, nil
}

// quizQuestionCount and quizOptionCount pin the quiz shape the reader UI
// renders.
const (
	quizQuestionCount = 3
	quizOptionCount   = 4
)

const quizSystemPrompt = `You write comprehension quizzes for children's stories. Questions must be answerable from the story alone. Respond only with JSON.`

// GenerateQuiz produces a quiz for a story: exactly 3 questions with 4
// options each. A reply whose correct answer is not one of its options is
// rejected, because the quiz would silently score that question wrong
// forever.
func (c *Client) GenerateQuiz(ctx context.Context, title string, pageTexts []string) (*models.Quiz, error) {
	payload := map[string]any{
		"systemInstruction": content{Parts: []part{{Text: quizSystemPrompt}}},
		"contents": userContent(fmt.Sprintf(
			"Story title: %s\nStory text:\n%s\nReturn JSON with field questions: an array of exactly %d objects, each with question (string), options (array of exactly %d strings) and correctAnswer (string, byte-equal to one of the options).",
			title, strings.Join(pageTexts, "\n"), quizQuestionCount, quizOptionCount,
		)),
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"temperature":      0.4,
		},
	}

	resp, err := c.generate(ctx, c.textModel, payload)
	if err != nil {
		return nil, err
	}
	text, err := resp.firstText()
	if err != nil {
		return nil, err
	}

	var quiz models.Quiz
	if err := json.Unmarshal([]byte(extractJSONPayload(text)), &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse quiz: %w", ErrInvalidResponse)
	}

	if len(quiz.Questions) != quizQuestionCount {
		return nil, fmt.Errorf("expected %d questions, got %d: %w", quizQuestionCount, len(quiz.Questions), ErrInvalidResponse)
	}
	for i, question := range quiz.Questions {
		if len(question.Options) != quizOptionCount {
			return nil, fmt.Errorf("question %d has %d options: %w", i, len(question.Options), ErrInvalidResponse)
		}
	}
	if !quiz.Valid() {
		return nil, fmt.Errorf("correct answer missing from options: %w", ErrInvalidResponse)
	}

	return &quiz, nil
}
