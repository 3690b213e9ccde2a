package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qudsystem/storybook-backend/internal/models"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) *profileRepository {
	return &profileRepository{
		db: db,
	}
}

// GetOrCreate retrieves the user's profile, creating an empty one on first
// access.
func (r *profileRepository) GetOrCreate(ctx context.Context, userID int) (*models.UserProfile, error) {
	insert := `INSERT IGNORE INTO user_profiles (user_id, gems, streak, last_activity_date) VALUES (?, 0, 0, '')`

	if _, err := r.db.ExecContext(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure profile row: %w", err)
	}

	return r.load(ctx, r.db, userID)
}

// Get retrieves the user's profile without creating it
func (r *profileRepository) Get(ctx context.Context, userID int) (*models.UserProfile, error) {
	return r.load(ctx, r.db, userID)
}

// queryer covers both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *profileRepository) load(ctx context.Context, q queryer, userID int) (*models.UserProfile, error) {
	query := `SELECT user_id, gems, streak, last_activity_date FROM user_profiles WHERE user_id = ?`

	profile := &models.UserProfile{
		Achievements:     []string{},
		PurchasedAvatars: []string{},
	}
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Gems,
		&profile.Streak,
		&profile.LastActivityDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	achievements, err := q.QueryContext(ctx, `SELECT achievement_id FROM user_achievements WHERE user_id = ? ORDER BY unlocked_at, achievement_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	defer achievements.Close()

	for achievements.Next() {
		var id string
		if err := achievements.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		profile.Achievements = append(profile.Achievements, id)
	}
	if err := achievements.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}

	avatars, err := q.QueryContext(ctx, `SELECT image_url FROM user_avatars WHERE user_id = ? ORDER BY purchased_at, image_url`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchased avatars: %w", err)
	}
	defer avatars.Close()

	for avatars.Next() {
		var url string
		if err := avatars.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan avatar: %w", err)
		}
		profile.PurchasedAvatars = append(profile.PurchasedAvatars, url)
	}
	if err := avatars.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate avatars: %w", err)
	}

	return profile, nil
}

// UpdateStreak advances the daily streak inside a single transaction. The row
// is locked for the read-modify-write so two same-day activities cannot both
// extend the streak. Same day is a no-op, the day after the last activity
// extends by one, any longer gap resets to 1.
func (r *profileRepository) UpdateStreak(ctx context.Context, userID int, today, yesterday string) (models.StreakResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.StreakResult{}, fmt.Errorf("failed to begin streak transaction: %w", err)
	}
	defer tx.Rollback()

	var streak int
	var lastActivity string
	err = tx.QueryRowContext(ctx,
		`SELECT streak, last_activity_date FROM user_profiles WHERE user_id = ? FOR UPDATE`,
		userID,
	).Scan(&streak, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StreakResult{}, ErrNotFound
	}
	if err != nil {
		return models.StreakResult{}, fmt.Errorf("failed to lock profile row: %w", err)
	}

	result := models.StreakResult{Streak: streak}
	switch lastActivity {
	case today:
		// Already counted today.
	case yesterday:
		result.Streak = streak + 1
		result.Extended = true
	default:
		result.Streak = 1
		result.Extended = true
	}

	if result.Extended {
		_, err = tx.ExecContext(ctx,
			`UPDATE user_profiles SET streak = ?, last_activity_date = ? WHERE user_id = ?`,
			result.Streak, today, userID,
		)
		if err != nil {
			return models.StreakResult{}, fmt.Errorf("failed to update streak: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.StreakResult{}, fmt.Errorf("failed to commit streak transaction: %w", err)
	}

	return result, nil
}

// AddGems adds gems to the user's balance
func (r *profileRepository) AddGems(ctx context.Context, userID, amount int) error {
	query := `UPDATE user_profiles SET gems = gems + ? WHERE user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, amount, userID); err != nil {
		return fmt.Errorf("failed to add gems: %w", err)
	}

	return nil
}

// GrantAchievement unlocks an achievement. Returns false if it was already
// unlocked.
func (r *profileRepository) GrantAchievement(ctx context.Context, userID int, achievementID string) (bool, error) {
	query := `INSERT IGNORE INTO user_achievements (user_id, achievement_id) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Purchase spends gems on a store item inside a single transaction. The gem
// decrement and the ownership insert commit together or not at all.
func (r *profileRepository) Purchase(ctx context.Context, userID int, cost int, imageURL string) (models.PurchaseOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback()

	var gems int
	err = tx.QueryRowContext(ctx,
		`SELECT gems FROM user_profiles WHERE user_id = ? FOR UPDATE`,
		userID,
	).Scan(&gems)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock profile row: %w", err)
	}

	var owned bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_avatars WHERE user_id = ? AND image_url = ?)`,
		userID, imageURL,
	).Scan(&owned)
	if err != nil {
		return "", fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned {
		return models.PurchaseAlreadyOwned, nil
	}

	if gems < cost {
		return models.PurchaseInsufficientFunds, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_profiles SET gems = gems - ? WHERE user_id = ?`,
		cost, userID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to deduct gems: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_avatars (user_id, image_url) VALUES (?, ?)`,
		userID, imageURL,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	return models.PurchaseOK, nil
}
