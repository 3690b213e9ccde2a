package models

import "time"

// BookOrigin distinguishes preloaded sample books from user-created stories.
type BookOrigin string

const (
	BookOriginSystem BookOrigin = "system"
	BookOriginUser   BookOrigin = "user"
)

// Page is a single illustrated page of a book. Pages are immutable once the
// book is created.
type Page struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// QuizQuestion is a multiple-choice comprehension question. CorrectAnswer must
// be byte-equal to one of Options; this is validated when a quiz is generated.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Quiz is an ordered list of questions attached to a book.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// QuizAttempt records one completed quiz run. Attempts are append-only.
type QuizAttempt struct {
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}

// UnreadPage marks a book that has never been opened. It is distinct from
// having reached page 0: a one-page book read to page 0 is finished, an
// unopened one has no progress at all.
const UnreadPage = -1

// Book is the central entity of the library.
type Book struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	CoverURL     string        `json:"coverUrl"`
	Pages        []Page        `json:"pages"`
	Quiz         *Quiz         `json:"quiz,omitempty"`
	QuizAttempts []QuizAttempt `json:"quizAttempts,omitempty"`
	Rating       int           `json:"rating,omitempty"`
	LastReadPage int           `json:"lastReadPage"`
	Bookmarked   bool          `json:"isBookmarked"`
	Progress     float64       `json:"progress"`
	CreatedBy    BookOrigin    `json:"createdBy"`
}

// PageCount returns the number of pages in the book.
func (b *Book) PageCount() int {
	return len(b.Pages)
}

// IsFinished reports whether the book has been read to the end.
func (b *Book) IsFinished() bool {
	return b.Progress >= 100
}

// ComputeProgress derives the reading-progress percentage from a page index.
// A negative page (UnreadPage) means the book was never opened and has no
// progress. Progress is never stored independently of the page position;
// callers must recompute it through this function to keep "page reached" and
// "percent complete" from drifting apart.
func ComputeProgress(lastReadPage, pageCount int) float64 {
	if pageCount <= 0 || lastReadPage < 0 {
		return 0
	}
	progress := float64(lastReadPage+1) / float64(pageCount) * 100
	if progress > 100 {
		progress = 100
	}
	return progress
}

// Valid reports whether every question's correct answer is a member of its
// options. A quiz violating this would silently score the question wrong on
// every attempt, so generation rejects it up front.
func (q *Quiz) Valid() bool {
	if len(q.Questions) == 0 {
		return false
	}
	for _, question := range q.Questions {
		if question.Question == "" || len(question.Options) == 0 {
			return false
		}
		found := false
		for _, option := range question.Options {
			if option == question.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
