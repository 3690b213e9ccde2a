package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qudsystem/storybook-backend/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

// Create creates a new user account
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, display_name, avatar_url, language)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.Language,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, avatar_url, language, created_at, updated_at
		FROM users
		WHERE email = ?
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, avatar_url, language, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// LanguageOf retrieves the user's preferred language
func (r *userRepository) LanguageOf(ctx context.Context, id int) (string, error) {
	query := `SELECT language FROM users WHERE id = ?`

	var language string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&language)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user language: %w", err)
	}

	return language, nil
}

// UpdateDisplayName updates the user's display name
func (r *userRepository) UpdateDisplayName(ctx context.Context, id int, displayName string) error {
	query := `UPDATE users SET display_name = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, displayName, id); err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}

	return nil
}

// UpdateAvatarURL updates the user's avatar reference
func (r *userRepository) UpdateAvatarURL(ctx context.Context, id int, avatarURL string) error {
	query := `UPDATE users SET avatar_url = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, avatarURL, id); err != nil {
		return fmt.Errorf("failed to update avatar url: %w", err)
	}

	return nil
}

// UpdateLanguage updates the user's preferred language
func (r *userRepository) UpdateLanguage(ctx context.Context, id int, language string) error {
	query := `UPDATE users SET language = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, language, id); err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}

	return nil
}
