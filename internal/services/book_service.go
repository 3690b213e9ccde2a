package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qudsystem/storybook-backend/internal/models"
)

// BookRepository is the interface that wraps library data access
type BookRepository interface {
	// Method ListByUser retrieves the user's library with quiz attempts
	// attached.
	//
	// If the library is empty, an empty slice will be returned.
	// If some error occurs during data retrieval, the error will be returned.
	ListByUser(ctx context.Context, userID int) ([]models.Book, error)
	// Method GetByID retrieves one book from the user's library.
	//
	// If the book does not exist, repositories.ErrNotFound will be returned.
	GetByID(ctx context.Context, userID int, bookID string) (*models.Book, error)
	// Method SeedSamples copies the sample catalog into the user's library.
	//
	// Returns the number of books seeded; zero when already seeded.
	SeedSamples(ctx context.Context, userID int) (int, error)
	// Method Create persists a user-created book.
	Create(ctx context.Context, userID int, book *models.Book) error
	// Method UpdateReadingPosition persists the last page the user reached.
	UpdateReadingPosition(ctx context.Context, userID int, bookID string, lastReadPage int) error
	// Method UpdateRating sets the user's star rating for a book.
	UpdateRating(ctx context.Context, userID int, bookID string, rating int) error
	// Method UpdateBookmark toggles the bookmark flag.
	UpdateBookmark(ctx context.Context, userID int, bookID string, bookmarked bool) error
	// Method SetQuiz attaches a generated quiz to a book.
	SetQuiz(ctx context.Context, userID int, bookID string, quiz *models.Quiz) error
	// Method AddQuizAttempt appends a quiz attempt. Attempts are append-only.
	AddQuizAttempt(ctx context.Context, userID int, bookID string, attempt models.QuizAttempt) error
}

// Rewarder is the reward engine surface the reading flows depend on
type Rewarder interface {
	// Method TriggerReward processes one rewarded activity. Best effort; never
	// returns an error.
	TriggerReward(ctx context.Context, userID int, activity models.Activity) *models.RewardResult
}

// bookService implements library operations: listing, reading progress,
// ratings, bookmarks and book completion.
type bookService struct {
	bookRepo BookRepository
	rewarder Rewarder
	clock    Clock
	logger   *zap.Logger
}

// NewBookService creates a new book service
func NewBookService(bookRepo BookRepository, rewarder Rewarder, clock Clock, logger *zap.Logger) *bookService {
	return &bookService{
		bookRepo: bookRepo,
		rewarder: rewarder,
		clock:    clock,
		logger:   logger,
	}
}

// ListLibrary returns the user's library, seeding the sample books on first
// access.
func (s *bookService) ListLibrary(ctx context.Context, userID int) ([]models.Book, error) {
	seeded, err := s.bookRepo.SeedSamples(ctx, userID)
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		s.logger.Info("seeded sample library", zap.Int("user_id", userID), zap.Int("books", seeded))
	}

	books, err := s.bookRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}

	return books, nil
}

// GetBook returns one book from the user's library
func (s *bookService) GetBook(ctx context.Context, userID int, bookID string) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, userID, bookID)
}

// UpdateReadingPosition records the page the user reached and returns the book
// with its derived progress. Finishing the book for the first time triggers
// the book-read reward.
func (s *bookService) UpdateReadingPosition(ctx context.Context, userID int, bookID string, lastReadPage int) (*models.Book, *models.RewardResult, error) {
	book, err := s.bookRepo.GetByID(ctx, userID, bookID)
	if err != nil {
		return nil, nil, err
	}

	if lastReadPage < 0 {
		lastReadPage = 0
	}
	if max := book.PageCount() - 1; lastReadPage > max && max >= 0 {
		lastReadPage = max
	}

	wasFinished := book.IsFinished()

	if err := s.bookRepo.UpdateReadingPosition(ctx, userID, bookID, lastReadPage); err != nil {
		return nil, nil, err
	}

	book.LastReadPage = lastReadPage
	book.Progress = models.ComputeProgress(lastReadPage, book.PageCount())

	var reward *models.RewardResult
	if book.IsFinished() && !wasFinished {
		reward = s.rewarder.TriggerReward(ctx, userID, models.BookReadActivity())
	}

	return book, reward, nil
}

// RateBook records a 1..5 star rating
func (s *bookService) RateBook(ctx context.Context, userID int, bookID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}

	if _, err := s.bookRepo.GetByID(ctx, userID, bookID); err != nil {
		return err
	}

	return s.bookRepo.UpdateRating(ctx, userID, bookID, rating)
}

// SetBookmark toggles the bookmark flag on a book
func (s *bookService) SetBookmark(ctx context.Context, userID int, bookID string, bookmarked bool) error {
	if _, err := s.bookRepo.GetByID(ctx, userID, bookID); err != nil {
		return err
	}

	return s.bookRepo.UpdateBookmark(ctx, userID, bookID, bookmarked)
}
