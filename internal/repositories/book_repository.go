package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qudsystem/storybook-backend/internal/models"
)

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *sql.DB) *bookRepository {
	return &bookRepository{
		db: db,
	}
}

// bookColumns is the select list shared by every book query. Pages and quiz
// are JSON documents; a page is immutable once written so there is no
// normalized page table.
const bookColumns = `id, user_id, title, cover_url, pages, quiz, rating, last_read_page, bookmarked, created_by`

func (r *bookRepository) scanBook(row interface{ Scan(dest ...any) error }) (*models.Book, error) {
	var (
		book      models.Book
		userID    sql.NullInt64
		pagesJSON []byte
		quizJSON  []byte
		rating    sql.NullInt64
		lastRead  sql.NullInt64
	)

	err := row.Scan(
		&book.ID,
		&userID,
		&book.Title,
		&book.CoverURL,
		&pagesJSON,
		&quizJSON,
		&rating,
		&lastRead,
		&book.Bookmarked,
		&book.CreatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	if err := json.Unmarshal(pagesJSON, &book.Pages); err != nil {
		return nil, fmt.Errorf("failed to decode pages: %w", err)
	}
	if len(quizJSON) > 0 {
		var quiz models.Quiz
		if err := json.Unmarshal(quizJSON, &quiz); err != nil {
			return nil, fmt.Errorf("failed to decode quiz: %w", err)
		}
		book.Quiz = &quiz
	}
	if rating.Valid {
		book.Rating = int(rating.Int64)
	}

	// NULL means the book was never opened
	book.LastReadPage = models.UnreadPage
	if lastRead.Valid {
		book.LastReadPage = int(lastRead.Int64)
	}

	book.Progress = models.ComputeProgress(book.LastReadPage, len(book.Pages))
	return &book, nil
}

// ListByUser retrieves the user's library with quiz attempts attached. The
// library starts as a per-user copy of the sample books (see SeedSamples) and
// grows with the user's own stories.
func (r *bookRepository) ListByUser(ctx context.Context, userID int) ([]models.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE user_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := r.scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	for i := range books {
		attempts, err := r.listAttempts(ctx, userID, books[i].ID)
		if err != nil {
			return nil, err
		}
		books[i].QuizAttempts = attempts
	}

	return books, nil
}

// GetByID retrieves one book visible to the user
func (r *bookRepository) GetByID(ctx context.Context, userID int, bookID string) (*models.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = ? AND user_id = ?
	`

	book, err := r.scanBook(r.db.QueryRowContext(ctx, query, bookID, userID))
	if err != nil {
		return nil, err
	}

	attempts, err := r.listAttempts(ctx, userID, book.ID)
	if err != nil {
		return nil, err
	}
	book.QuizAttempts = attempts

	return book, nil
}

// SeedSamples copies the sample catalog into the user's library. Reading
// position, rating and bookmarks are per user, so each user gets their own
// rows; the reading position starts unset. Returns the number of books
// seeded; zero when already seeded.
func (r *bookRepository) SeedSamples(ctx context.Context, userID int) (int, error) {
	query := `
		INSERT INTO books (id, user_id, title, cover_url, pages, quiz, last_read_page, bookmarked, created_by)
		SELECT UUID(), ?, title, cover_url, pages, quiz, NULL, FALSE, 'system'
		FROM sample_books
		WHERE NOT EXISTS (SELECT 1 FROM books WHERE user_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query, userID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to seed sample books: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// Create persists a user-created book
func (r *bookRepository) Create(ctx context.Context, userID int, book *models.Book) error {
	pagesJSON, err := json.Marshal(book.Pages)
	if err != nil {
		return fmt.Errorf("failed to encode pages: %w", err)
	}

	var quizJSON []byte
	if book.Quiz != nil {
		quizJSON, err = json.Marshal(book.Quiz)
		if err != nil {
			return fmt.Errorf("failed to encode quiz: %w", err)
		}
	}

	query := `
		INSERT INTO books (id, user_id, title, cover_url, pages, quiz, last_read_page, bookmarked, created_by)
		VALUES (?, ?, ?, ?, ?, ?, NULL, FALSE, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		book.ID,
		userID,
		book.Title,
		book.CoverURL,
		pagesJSON,
		quizJSON,
		book.CreatedBy,
	); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// UpdateReadingPosition persists the last page the user reached
func (r *bookRepository) UpdateReadingPosition(ctx context.Context, userID int, bookID string, lastReadPage int) error {
	query := `
		UPDATE books SET last_read_page = ?
		WHERE id = ? AND user_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, lastReadPage, bookID, userID); err != nil {
		return fmt.Errorf("failed to update reading position: %w", err)
	}

	return nil
}

// UpdateRating sets the user's star rating for a book
func (r *bookRepository) UpdateRating(ctx context.Context, userID int, bookID string, rating int) error {
	query := `
		UPDATE books SET rating = ?
		WHERE id = ? AND user_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, rating, bookID, userID); err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}

	return nil
}

// UpdateBookmark toggles the bookmark flag
func (r *bookRepository) UpdateBookmark(ctx context.Context, userID int, bookID string, bookmarked bool) error {
	query := `
		UPDATE books SET bookmarked = ?
		WHERE id = ? AND user_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, bookmarked, bookID, userID); err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}

	return nil
}

// SetQuiz attaches a generated quiz to a book
func (r *bookRepository) SetQuiz(ctx context.Context, userID int, bookID string, quiz *models.Quiz) error {
	quizJSON, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("failed to encode quiz: %w", err)
	}

	query := `
		UPDATE books SET quiz = ?
		WHERE id = ? AND user_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, quizJSON, bookID, userID); err != nil {
		return fmt.Errorf("failed to set quiz: %w", err)
	}

	return nil
}

// AddQuizAttempt appends a quiz attempt. Attempts are never updated or
// deleted.
func (r *bookRepository) AddQuizAttempt(ctx context.Context, userID int, bookID string, attempt models.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (user_id, book_id, score, total, attempted_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, bookID, attempt.Score, attempt.Total, attempt.Date); err != nil {
		return fmt.Errorf("failed to add quiz attempt: %w", err)
	}

	return nil
}

func (r *bookRepository) listAttempts(ctx context.Context, userID int, bookID string) ([]models.QuizAttempt, error) {
	query := `
		SELECT score, total, attempted_at
		FROM quiz_attempts
		WHERE user_id = ? AND book_id = ?
		ORDER BY attempted_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.QuizAttempt
	for rows.Next() {
		var attempt models.QuizAttempt
		if err := rows.Scan(&attempt.Score, &attempt.Total, &attempt.Date); err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz attempts: %w", err)
	}

	return attempts, nil
}

// CountFinished counts the user's finished books straight from storage. A book
// is finished when its last read page is the final page; unopened books
// (NULL position) never count.
func (r *bookRepository) CountFinished(ctx context.Context, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM books
		WHERE user_id = ?
		  AND last_read_page IS NOT NULL
		  AND last_read_page + 1 >= JSON_LENGTH(pages)
		  AND JSON_LENGTH(pages) > 0
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count finished books: %w", err)
	}

	return count, nil
}
