package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProfileRepository(t *testing.T) (*profileRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewProfileRepository(db), mock
}

func expectProfileLoad(mock sqlmock.Sqlmock, userID, gems, streak int, lastActivity string) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, gems, streak, last_activity_date FROM user_profiles WHERE user_id = ?`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "gems", "streak", "last_activity_date"}).
			AddRow(userID, gems, streak, lastActivity))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT achievement_id FROM user_achievements WHERE user_id = ?`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"achievement_id"}).AddRow("first_book"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT image_url FROM user_avatars WHERE user_id = ?`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}))
}

func TestProfileRepository_GetOrCreate(t *testing.T) {
	repo, mock := setupProfileRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO user_profiles`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfileLoad(mock, 1, 120, 3, "2026-03-14")

	profile, err := repo.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, profile.UserID)
	assert.Equal(t, 120, profile.Gems)
	assert.Equal(t, 3, profile.Streak)
	assert.Equal(t, []string{"first_book"}, profile.Achievements)
	assert.Empty(t, profile.PurchasedAvatars)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Get_NotFound(t *testing.T) {
	repo, mock := setupProfileRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, gems, streak, last_activity_date FROM user_profiles WHERE user_id = ?`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "gems", "streak", "last_activity_date"}))

	profile, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, profile)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_UpdateStreak(t *testing.T) {
	const (
		today     = "2026-03-14"
		yesterday = "2026-03-13"
	)

	tests := []struct {
		name         string
		lastActivity string
		streak       int
		expected     models.StreakResult
	}{
		{
			name:         "same day is a no-op",
			lastActivity: today,
			streak:       4,
			expected:     models.StreakResult{Streak: 4, Extended: false},
		},
		{
			name:         "consecutive day extends",
			lastActivity: yesterday,
			streak:       4,
			expected:     models.StreakResult{Streak: 5, Extended: true},
		},
		{
			name:         "gap resets to one",
			lastActivity: "2026-03-01",
			streak:       4,
			expected:     models.StreakResult{Streak: 1, Extended: true},
		},
		{
			name:         "first activity ever",
			lastActivity: "",
			streak:       0,
			expected:     models.StreakResult{Streak: 1, Extended: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupProfileRepository(t)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT streak, last_activity_date FROM user_profiles WHERE user_id = ? FOR UPDATE`)).
				WithArgs(1).
				WillReturnRows(sqlmock.NewRows([]string{"streak", "last_activity_date"}).
					AddRow(tt.streak, tt.lastActivity))
			if tt.expected.Extended {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE user_profiles SET streak = ?, last_activity_date = ? WHERE user_id = ?`)).
					WithArgs(tt.expected.Streak, today, 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}
			mock.ExpectCommit()

			result, err := repo.UpdateStreak(context.Background(), 1, today, yesterday)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_UpdateStreak_NoProfile(t *testing.T) {
	repo, mock := setupProfileRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT streak, last_activity_date FROM user_profiles WHERE user_id = ? FOR UPDATE`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"streak", "last_activity_date"}))
	mock.ExpectRollback()

	_, err := repo.UpdateStreak(context.Background(), 42, "2026-03-14", "2026-03-13")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_AddGems(t *testing.T) {
	repo, mock := setupProfileRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE user_profiles SET gems = gems + ? WHERE user_id = ?`)).
		WithArgs(15, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddGems(context.Background(), 1, 15)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GrantAchievement(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		expected     bool
	}{
		{
			name:         "newly unlocked",
			rowsAffected: 1,
			expected:     true,
		},
		{
			name:         "already unlocked",
			rowsAffected: 0,
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupProfileRepository(t)

			mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO user_achievements (user_id, achievement_id) VALUES (?, ?)`)).
				WithArgs(1, "first_book").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			granted, err := repo.GrantAchievement(context.Background(), 1, "first_book")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, granted)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_Purchase(t *testing.T) {
	const imageURL = "/avatars/ninja.png"

	t.Run("successful purchase", func(t *testing.T) {
		repo, mock := setupProfileRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT gems FROM user_profiles WHERE user_id = ? FOR UPDATE`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"gems"}).AddRow(500))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM user_avatars WHERE user_id = ? AND image_url = ?)`)).
			WithArgs(1, imageURL).
			WillReturnRows(sqlmock.NewRows([]string{"owned"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE user_profiles SET gems = gems - ? WHERE user_id = ?`)).
			WithArgs(300, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_avatars (user_id, image_url) VALUES (?, ?)`)).
			WithArgs(1, imageURL).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		outcome, err := repo.Purchase(context.Background(), 1, 300, imageURL)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseOK, outcome)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not enough gems", func(t *testing.T) {
		repo, mock := setupProfileRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT gems FROM user_profiles WHERE user_id = ? FOR UPDATE`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"gems"}).AddRow(50))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM user_avatars WHERE user_id = ? AND image_url = ?)`)).
			WithArgs(1, imageURL).
			WillReturnRows(sqlmock.NewRows([]string{"owned"}).AddRow(false))
		mock.ExpectRollback()

		outcome, err := repo.Purchase(context.Background(), 1, 300, imageURL)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseInsufficientFunds, outcome)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already owned", func(t *testing.T) {
		repo, mock := setupProfileRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT gems FROM user_profiles WHERE user_id = ? FOR UPDATE`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"gems"}).AddRow(500))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM user_avatars WHERE user_id = ? AND image_url = ?)`)).
			WithArgs(1, imageURL).
			WillReturnRows(sqlmock.NewRows([]string{"owned"}).AddRow(true))
		mock.ExpectRollback()

		outcome, err := repo.Purchase(context.Background(), 1, 300, imageURL)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseAlreadyOwned, outcome)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
