package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/qudsystem/storybook-backend/internal/models"
)

// ErrNoQuiz is returned when a quiz submission arrives for a book that has no
// quiz attached.
var ErrNoQuiz = errors.New("book has no quiz")

// QuizGenerator is the generative surface that produces comprehension quizzes
type QuizGenerator interface {
	// Method GenerateQuiz produces a quiz for a story. Each question's correct
	// answer is guaranteed to be one of its options.
	//
	// "title" and "pageTexts" parameters describe the story to quiz on.
	// If the provider output cannot be parsed into a valid quiz, the error will
	// be returned.
	GenerateQuiz(ctx context.Context, title string, pageTexts []string) (*models.Quiz, error)
}

// quizService implements quiz generation and scoring.
type quizService struct {
	bookRepo  BookRepository
	generator QuizGenerator
	rewarder  Rewarder
	clock     Clock
}

// NewQuizService creates a new quiz service
func NewQuizService(bookRepo BookRepository, generator QuizGenerator, rewarder Rewarder, clock Clock) *quizService {
	return &quizService{
		bookRepo:  bookRepo,
		generator: generator,
		rewarder:  rewarder,
		clock:     clock,
	}
}

// GetOrGenerateQuiz returns the book's quiz, generating and persisting one on
// first request.
func (s *quizService) GetOrGenerateQuiz(ctx context.Context, userID int, bookID string) (*models.Quiz, error) {
	book, err := s.bookRepo.GetByID(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if book.Quiz != nil {
		return book.Quiz, nil
	}

	pageTexts := make([]string, len(book.Pages))
	for i, page := range book.Pages {
		pageTexts[i] = page.Text
	}

	quiz, err := s.generator.GenerateQuiz(ctx, book.Title, pageTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}

	if err := s.bookRepo.SetQuiz(ctx, userID, bookID, quiz); err != nil {
		return nil, err
	}

	return quiz, nil
}

// QuizSubmission carries the user's picked answers, one per question in
// order.
type QuizSubmission struct {
	Answers []string `json:"answers"`
}

// QuizScore is the outcome of a scored submission.
type QuizScore struct {
	Score   int                  `json:"score"`
	Total   int                  `json:"total"`
	Attempt models.QuizAttempt   `json:"attempt"`
	Reward  *models.RewardResult `json:"reward,omitempty"`
}

// SubmitQuiz scores a submission against the book's quiz, appends the attempt
// and triggers the quiz reward. Answers are compared byte for byte.
func (s *quizService) SubmitQuiz(ctx context.Context, userID int, bookID string, submission QuizSubmission) (*QuizScore, error) {
	book, err := s.bookRepo.GetByID(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if book.Quiz == nil {
		return nil, ErrNoQuiz
	}

	total := len(book.Quiz.Questions)
	if len(submission.Answers) != total {
		return nil, fmt.Errorf("expected %d answers, got %d", total, len(submission.Answers))
	}

	score := 0
	for i, question := range book.Quiz.Questions {
		if submission.Answers[i] == question.CorrectAnswer {
			score++
		}
	}

	attempt := models.QuizAttempt{
		Score: score,
		Total: total,
		Date:  s.clock.Now(),
	}
	if err := s.bookRepo.AddQuizAttempt(ctx, userID, bookID, attempt); err != nil {
		return nil, err
	}

	reward := s.rewarder.TriggerReward(ctx, userID, models.QuizCompletedActivity(score, total))

	return &QuizScore{
		Score:   score,
		Total:   total,
		Attempt: attempt,
		Reward:  reward,
	}, nil
}
