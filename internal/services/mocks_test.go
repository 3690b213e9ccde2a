package services

import (
	"context"
	"testing"
	"time"

	"github.com/qudsystem/storybook-backend/internal/i18n"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/stretchr/testify/require"
)

// fakeClock pins time for streak and expiry logic
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	translator, err := i18n.New()
	require.NoError(t, err)
	return translator
}

// mockProfileRepo is a mock implementation of RewardProfileRepository and
// StoreProfileRepository
type mockProfileRepo struct {
	profile     *models.UserProfile
	getErr      error
	streak      models.StreakResult
	streakErr   error
	gemsAdded   int
	addGemsErr  error
	granted     []string
	grantErr    error
	purchase    models.PurchaseOutcome
	purchaseErr error
}

func (m *mockProfileRepo) GetOrCreate(ctx context.Context, userID int) (*models.UserProfile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profile, nil
}

func (m *mockProfileRepo) Get(ctx context.Context, userID int) (*models.UserProfile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profile, nil
}

func (m *mockProfileRepo) UpdateStreak(ctx context.Context, userID int, today, yesterday string) (models.StreakResult, error) {
	if m.streakErr != nil {
		return models.StreakResult{}, m.streakErr
	}
	return m.streak, nil
}

func (m *mockProfileRepo) AddGems(ctx context.Context, userID, amount int) error {
	if m.addGemsErr != nil {
		return m.addGemsErr
	}
	m.gemsAdded += amount
	return nil
}

func (m *mockProfileRepo) GrantAchievement(ctx context.Context, userID int, achievementID string) (bool, error) {
	if m.grantErr != nil {
		return false, m.grantErr
	}
	for _, id := range m.granted {
		if id == achievementID {
			return false, nil
		}
	}
	m.granted = append(m.granted, achievementID)
	return true, nil
}

func (m *mockProfileRepo) Purchase(ctx context.Context, userID int, cost int, imageURL string) (models.PurchaseOutcome, error) {
	if m.purchaseErr != nil {
		return "", m.purchaseErr
	}
	return m.purchase, nil
}

// mockBookCounter is a mock implementation of RewardBookRepository
type mockBookCounter struct {
	finished int
	err      error
}

func (m *mockBookCounter) CountFinished(ctx context.Context, userID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.finished, nil
}

// mockLanguages is a mock implementation of LanguageResolver
type mockLanguages struct {
	lang string
	err  error
}

func (m *mockLanguages) LanguageOf(ctx context.Context, userID int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.lang, nil
}

// mockBookRepo is a mock implementation of BookRepository
type mockBookRepo struct {
	book        *models.Book
	getErr      error
	books       []models.Book
	listErr     error
	seeded      int
	seedErr     error
	created     *models.Book
	createErr   error
	position    int
	positionErr error
	rating      int
	ratingErr   error
	bookmarked  bool
	quiz        *models.Quiz
	setQuizErr  error
	attempts    []models.QuizAttempt
	attemptErr  error
}

func (m *mockBookRepo) ListByUser(ctx context.Context, userID int) ([]models.Book, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.books, nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, userID int, bookID string) (*models.Book, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.book, nil
}

func (m *mockBookRepo) SeedSamples(ctx context.Context, userID int) (int, error) {
	if m.seedErr != nil {
		return 0, m.seedErr
	}
	return m.seeded, nil
}

func (m *mockBookRepo) Create(ctx context.Context, userID int, book *models.Book) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = book
	return nil
}

func (m *mockBookRepo) UpdateReadingPosition(ctx context.Context, userID int, bookID string, lastReadPage int) error {
	if m.positionErr != nil {
		return m.positionErr
	}
	m.position = lastReadPage
	return nil
}

func (m *mockBookRepo) UpdateRating(ctx context.Context, userID int, bookID string, rating int) error {
	if m.ratingErr != nil {
		return m.ratingErr
	}
	m.rating = rating
	return nil
}

func (m *mockBookRepo) UpdateBookmark(ctx context.Context, userID int, bookID string, bookmarked bool) error {
	m.bookmarked = bookmarked
	return nil
}

func (m *mockBookRepo) SetQuiz(ctx context.Context, userID int, bookID string, quiz *models.Quiz) error {
	if m.setQuizErr != nil {
		return m.setQuizErr
	}
	m.quiz = quiz
	return nil
}

func (m *mockBookRepo) AddQuizAttempt(ctx context.Context, userID int, bookID string, attempt models.QuizAttempt) error {
	if m.attemptErr != nil {
		return m.attemptErr
	}
	m.attempts = append(m.attempts, attempt)
	return nil
}

// mockRewarder is a mock implementation of Rewarder
type mockRewarder struct {
	activities []models.Activity
	result     *models.RewardResult
}

func (m *mockRewarder) TriggerReward(ctx context.Context, userID int, activity models.Activity) *models.RewardResult {
	m.activities = append(m.activities, activity)
	if m.result != nil {
		return m.result
	}
	return &models.RewardResult{}
}
