package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/qudsystem/storybook-backend/internal/models"
)

// Notifier queues short-lived toast notifications per user. A notification
// expires on its own after models.NotificationTTL; expired entries are pruned
// on every read, so a client that never polls does not leak memory beyond its
// last burst.
type Notifier struct {
	mu    sync.Mutex
	clock Clock
	queue map[int][]models.Notification
}

// NewNotifier creates a notifier using the given clock
func NewNotifier(clock Clock) *Notifier {
	return &Notifier{
		clock: clock,
		queue: make(map[int][]models.Notification),
	}
}

// Push queues a notification for the user and returns it with its identity
// and expiry filled in.
func (n *Notifier) Push(userID int, kind models.NotificationKind, message, icon string) models.Notification {
	now := n.clock.Now()
	notification := models.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Icon:      icon,
		CreatedAt: now,
		ExpiresAt: now.Add(models.NotificationTTL),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue[userID] = append(n.queue[userID], notification)

	return notification
}

// Pending returns the user's live notifications and drops the expired ones.
func (n *Notifier) Pending(userID int) []models.Notification {
	now := n.clock.Now()

	n.mu.Lock()
	defer n.mu.Unlock()

	pending := n.queue[userID][:0]
	for _, notification := range n.queue[userID] {
		if notification.ExpiresAt.After(now) {
			pending = append(pending, notification)
		}
	}

	if len(pending) == 0 {
		delete(n.queue, userID)
		return []models.Notification{}
	}
	n.queue[userID] = pending

	out := make([]models.Notification, len(pending))
	copy(out, pending)
	return out
}

// Dismiss removes one notification before its expiry.
func (n *Notifier) Dismiss(userID int, notificationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	queue := n.queue[userID]
	for i, notification := range queue {
		if notification.ID == notificationID {
			n.queue[userID] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}
