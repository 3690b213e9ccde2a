package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockStoryGenerator is a mock implementation of StoryGenerator
type mockStoryGenerator struct {
	draft    *models.StoryDraft
	storyErr error
	imageErr error
}

func (m *mockStoryGenerator) GenerateStory(ctx context.Context, prompt string) (*models.StoryDraft, error) {
	if m.storyErr != nil {
		return nil, m.storyErr
	}
	return m.draft, nil
}

func (m *mockStoryGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if m.imageErr != nil {
		return nil, "", m.imageErr
	}
	return []byte{0x89, 0x50}, "image/png", nil
}

// mockUploader is a mock implementation of AssetUploader
type mockUploader struct {
	err     error
	uploads int
}

func (m *mockUploader) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads++
	return fmt.Sprintf("https://cdn.example.com/%s/%s.png", folder, name), nil
}

func storyDraft() *models.StoryDraft {
	return &models.StoryDraft{
		Title: "The Brave Fox",
		Pages: []models.StoryPageDraft{
			{Text: "The fox set out at dawn.", ImagePrompt: "a fox at sunrise"},
			{Text: "She came home happy.", ImagePrompt: "a fox by a den"},
		},
	}
}

func TestStoryService_CreateStory(t *testing.T) {
	bookRepo := &mockBookRepo{}
	uploader := &mockUploader{}
	rewarder := &mockRewarder{}
	svc := NewStoryService(bookRepo, &mockStoryGenerator{draft: storyDraft()}, uploader, rewarder, zap.NewNop())

	book, reward, err := svc.CreateStory(context.Background(), 1, "a brave fox")
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Brave Fox", book.Title)
	assert.Equal(t, models.BookOriginUser, book.CreatedBy)
	assert.Equal(t, models.UnreadPage, book.LastReadPage)
	assert.Zero(t, book.Progress)
	require.Len(t, book.Pages, 2)
	assert.NotEmpty(t, book.Pages[0].ImageURL)
	assert.Equal(t, book.Pages[0].ImageURL, book.CoverURL)
	assert.Equal(t, 2, uploader.uploads)

	assert.Equal(t, bookRepo.created, book)

	assert.NotNil(t, reward)
	require.Len(t, rewarder.activities, 1)
	assert.Equal(t, models.ActivityStoryCreated, rewarder.activities[0].Kind)
}

func TestStoryService_CreateStory_EmptyPrompt(t *testing.T) {
	svc := NewStoryService(&mockBookRepo{}, &mockStoryGenerator{draft: storyDraft()}, &mockUploader{}, &mockRewarder{}, zap.NewNop())

	_, _, err := svc.CreateStory(context.Background(), 1, "")
	assert.Error(t, err)
}

func TestStoryService_CreateStory_GeneratorError(t *testing.T) {
	rewarder := &mockRewarder{}
	svc := NewStoryService(&mockBookRepo{}, &mockStoryGenerator{storyErr: errors.New("provider unavailable")}, &mockUploader{}, rewarder, zap.NewNop())

	_, _, err := svc.CreateStory(context.Background(), 1, "a brave fox")
	assert.Error(t, err)
	assert.Empty(t, rewarder.activities)
}

func TestStoryService_CreateStory_IllustrationFailureIsNotFatal(t *testing.T) {
	bookRepo := &mockBookRepo{}
	svc := NewStoryService(bookRepo, &mockStoryGenerator{draft: storyDraft(), imageErr: errors.New("image model down")}, &mockUploader{}, &mockRewarder{}, zap.NewNop())

	book, _, err := svc.CreateStory(context.Background(), 1, "a brave fox")
	require.NoError(t, err)

	for _, page := range book.Pages {
		assert.Empty(t, page.ImageURL)
	}
	assert.Empty(t, book.CoverURL)
	assert.NotNil(t, bookRepo.created)
}

func TestStoryService_CreateStory_UploadFailureIsNotFatal(t *testing.T) {
	svc := NewStoryService(&mockBookRepo{}, &mockStoryGenerator{draft: storyDraft()}, &mockUploader{err: errors.New("storage unavailable")}, &mockRewarder{}, zap.NewNop())

	book, _, err := svc.CreateStory(context.Background(), 1, "a brave fox")
	require.NoError(t, err)
	assert.Empty(t, book.CoverURL)
}

func TestStoryService_CreateStory_PersistError(t *testing.T) {
	bookRepo := &mockBookRepo{createErr: errors.New("database error")}
	rewarder := &mockRewarder{}
	svc := NewStoryService(bookRepo, &mockStoryGenerator{draft: storyDraft()}, &mockUploader{}, rewarder, zap.NewNop())

	_, _, err := svc.CreateStory(context.Background(), 1, "a brave fox")
	assert.Error(t, err)
	assert.Empty(t, rewarder.activities)
}
