package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBookService(bookRepo *mockBookRepo, rewarder *mockRewarder) *bookService {
	return NewBookService(bookRepo, rewarder, &fakeClock{now: time.Now()}, zap.NewNop())
}

func TestBookService_ListLibrary(t *testing.T) {
	books := []models.Book{{ID: "b1", Title: "The Lost Hat"}, {ID: "b2", Title: "Moon Garden"}}
	bookRepo := &mockBookRepo{books: books, seeded: 2}
	svc := newTestBookService(bookRepo, &mockRewarder{})

	got, err := svc.ListLibrary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestBookService_ListLibrary_EmptyIsNotNil(t *testing.T) {
	bookRepo := &mockBookRepo{books: nil}
	svc := newTestBookService(bookRepo, &mockRewarder{})

	got, err := svc.ListLibrary(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBookService_ListLibrary_SeedError(t *testing.T) {
	bookRepo := &mockBookRepo{seedErr: errors.New("database error")}
	svc := newTestBookService(bookRepo, &mockRewarder{})

	got, err := svc.ListLibrary(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestBookService_UpdateReadingPosition(t *testing.T) {
	tests := []struct {
		name         string
		lastReadPage int
		expectedPage int
		finishes     bool
	}{
		{
			name:         "middle of the book",
			lastReadPage: 1,
			expectedPage: 1,
			finishes:     false,
		},
		{
			name:         "last page finishes the book",
			lastReadPage: 2,
			expectedPage: 2,
			finishes:     true,
		},
		{
			name:         "page beyond the end clamps to last",
			lastReadPage: 99,
			expectedPage: 2,
			finishes:     true,
		},
		{
			name:         "negative page clamps to first",
			lastReadPage: -1,
			expectedPage: 0,
			finishes:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookRepo := &mockBookRepo{book: &models.Book{
				ID:           "b1",
				Pages:        []models.Page{{Text: "a"}, {Text: "b"}, {Text: "c"}},
				LastReadPage: models.UnreadPage,
			}}
			rewarder := &mockRewarder{}
			svc := newTestBookService(bookRepo, rewarder)

			book, reward, err := svc.UpdateReadingPosition(context.Background(), 1, "b1", tt.lastReadPage)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedPage, bookRepo.position)
			assert.Equal(t, tt.expectedPage, book.LastReadPage)
			assert.InDelta(t, models.ComputeProgress(tt.expectedPage, 3), book.Progress, 0.001)

			if tt.finishes {
				assert.NotNil(t, reward)
				require.Len(t, rewarder.activities, 1)
				assert.Equal(t, models.ActivityBookRead, rewarder.activities[0].Kind)
			} else {
				assert.Nil(t, reward)
				assert.Empty(t, rewarder.activities)
			}
		})
	}
}

func TestBookService_UpdateReadingPosition_UnreadSinglePageBookRewards(t *testing.T) {
	bookRepo := &mockBookRepo{book: &models.Book{
		ID:           "b1",
		Pages:        []models.Page{{Text: "only page"}},
		LastReadPage: models.UnreadPage,
	}}
	rewarder := &mockRewarder{}
	svc := newTestBookService(bookRepo, rewarder)

	book, reward, err := svc.UpdateReadingPosition(context.Background(), 1, "b1", 0)
	require.NoError(t, err)

	assert.True(t, book.IsFinished())
	assert.NotNil(t, reward)
	require.Len(t, rewarder.activities, 1)
	assert.Equal(t, models.ActivityBookRead, rewarder.activities[0].Kind)
}

func TestBookService_UpdateReadingPosition_NoRewardWhenAlreadyFinished(t *testing.T) {
	bookRepo := &mockBookRepo{book: &models.Book{
		ID:           "b1",
		Pages:        []models.Page{{Text: "a"}, {Text: "b"}},
		LastReadPage: 1,
		Progress:     100,
	}}
	rewarder := &mockRewarder{}
	svc := newTestBookService(bookRepo, rewarder)

	_, reward, err := svc.UpdateReadingPosition(context.Background(), 1, "b1", 1)
	require.NoError(t, err)

	assert.Nil(t, reward)
	assert.Empty(t, rewarder.activities)
}

func TestBookService_RateBook(t *testing.T) {
	tests := []struct {
		name    string
		rating  int
		wantErr bool
	}{
		{
			name:    "lowest valid rating",
			rating:  1,
			wantErr: false,
		},
		{
			name:    "highest valid rating",
			rating:  5,
			wantErr: false,
		},
		{
			name:    "zero rating rejected",
			rating:  0,
			wantErr: true,
		},
		{
			name:    "rating above five rejected",
			rating:  6,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookRepo := &mockBookRepo{book: &models.Book{ID: "b1"}}
			svc := newTestBookService(bookRepo, &mockRewarder{})

			err := svc.RateBook(context.Background(), 1, "b1", tt.rating)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Zero(t, bookRepo.rating)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.rating, bookRepo.rating)
			}
		})
	}
}

func TestBookService_SetBookmark(t *testing.T) {
	bookRepo := &mockBookRepo{book: &models.Book{ID: "b1"}}
	svc := newTestBookService(bookRepo, &mockRewarder{})

	err := svc.SetBookmark(context.Background(), 1, "b1", true)
	require.NoError(t, err)
	assert.True(t, bookRepo.bookmarked)
}

func TestBookService_SetBookmark_UnknownBook(t *testing.T) {
	bookRepo := &mockBookRepo{getErr: errors.New("not found")}
	svc := newTestBookService(bookRepo, &mockRewarder{})

	err := svc.SetBookmark(context.Background(), 1, "missing", true)
	assert.Error(t, err)
}
