package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qudsystem/storybook-backend/internal/models"
)

// StoryGenerator is the generative surface that produces stories
type StoryGenerator interface {
	// Method GenerateStory produces a titled story with page texts and image
	// prompts from a child's idea.
	//
	// If the provider output cannot be parsed into a valid story, the error
	// will be returned.
	GenerateStory(ctx context.Context, prompt string) (*models.StoryDraft, error)
	// Method GenerateImage renders an illustration for a prompt and returns the
	// raw image bytes with their MIME type.
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// AssetUploader stores binary assets and returns a hosted URL
type AssetUploader interface {
	// Method Upload stores the asset under the given folder and returns its
	// public URL.
	Upload(ctx context.Context, data []byte, folder, name string) (string, error)
}

// storyService turns a child's prompt into an illustrated library book.
type storyService struct {
	bookRepo  BookRepository
	generator StoryGenerator
	uploader  AssetUploader
	rewarder  Rewarder
	logger    *zap.Logger
}

// NewStoryService creates a new story service
func NewStoryService(bookRepo BookRepository, generator StoryGenerator, uploader AssetUploader, rewarder Rewarder, logger *zap.Logger) *storyService {
	return &storyService{
		bookRepo:  bookRepo,
		generator: generator,
		uploader:  uploader,
		rewarder:  rewarder,
		logger:    logger,
	}
}

// CreateStory generates a story for the prompt, illustrates each page, saves
// the result to the user's library and triggers the story-created reward. A
// failed illustration leaves that page without a picture rather than failing
// the whole story.
func (s *storyService) CreateStory(ctx context.Context, userID int, prompt string) (*models.Book, *models.RewardResult, error) {
	if prompt == "" {
		return nil, nil, fmt.Errorf("story prompt must not be empty")
	}

	draft, err := s.generator.GenerateStory(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate story: %w", err)
	}
	if draft.Title == "" || len(draft.Pages) == 0 {
		return nil, nil, fmt.Errorf("generated story is empty")
	}

	book := &models.Book{
		ID:           uuid.NewString(),
		Title:        draft.Title,
		CreatedBy:    models.BookOriginUser,
		LastReadPage: models.UnreadPage,
		Pages:        make([]models.Page, len(draft.Pages)),
	}

	for i, page := range draft.Pages {
		book.Pages[i] = models.Page{Text: page.Text}

		data, mime, err := s.generator.GenerateImage(ctx, page.ImagePrompt)
		if err != nil {
			s.logger.Warn("story: failed to illustrate page",
				zap.Int("user_id", userID), zap.Int("page", i), zap.Error(err))
			continue
		}

		name := fmt.Sprintf("%s_page_%d", book.ID, i)
		url, err := s.uploader.Upload(ctx, data, "stories", name)
		if err != nil {
			s.logger.Warn("story: failed to upload illustration",
				zap.Int("user_id", userID), zap.Int("page", i), zap.String("mime", mime), zap.Error(err))
			continue
		}

		book.Pages[i].ImageURL = url
		if book.CoverURL == "" {
			book.CoverURL = url
		}
	}

	if err := s.bookRepo.Create(ctx, userID, book); err != nil {
		return nil, nil, err
	}

	reward := s.rewarder.TriggerReward(ctx, userID, models.StoryCreatedActivity())

	return book, reward, nil
}
