package services

import (
	"testing"
	"time"

	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PushAndPending(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	notifier := NewNotifier(clock)

	pushed := notifier.Push(1, models.NotificationGems, "+10 Gems!", "gem")
	assert.NotEmpty(t, pushed.ID)
	assert.Equal(t, clock.now.Add(models.NotificationTTL), pushed.ExpiresAt)

	pending := notifier.Pending(1)
	require.Len(t, pending, 1)
	assert.Equal(t, pushed.ID, pending[0].ID)

	// Other users see nothing.
	assert.Empty(t, notifier.Pending(2))
}

func TestNotifier_ExpiryPrunes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	notifier := NewNotifier(clock)

	notifier.Push(1, models.NotificationGems, "+10 Gems!", "gem")
	clock.now = clock.now.Add(models.NotificationTTL / 2)
	kept := notifier.Push(1, models.NotificationAchievement, "Achievement unlocked: First Chapter", "trophy")

	clock.now = clock.now.Add(models.NotificationTTL/2 + time.Millisecond)

	pending := notifier.Pending(1)
	require.Len(t, pending, 1)
	assert.Equal(t, kept.ID, pending[0].ID)

	clock.now = clock.now.Add(models.NotificationTTL)
	assert.Empty(t, notifier.Pending(1))
}

func TestNotifier_Dismiss(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	notifier := NewNotifier(clock)

	first := notifier.Push(1, models.NotificationGems, "+10 Gems!", "gem")
	second := notifier.Push(1, models.NotificationGems, "+20 Gems!", "gem")

	notifier.Dismiss(1, first.ID)

	pending := notifier.Pending(1)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	// Dismissing an unknown id is a no-op.
	notifier.Dismiss(1, "no-such-id")
	assert.Len(t, notifier.Pending(1), 1)
}
