package models

import "time"

// NotificationTTL is how long a toast stays visible before it expires on its
// own.
const NotificationTTL = 4 * time.Second

// NotificationKind distinguishes toast styles.
type NotificationKind string

const (
	NotificationAchievement NotificationKind = "achievement"
	NotificationGems        NotificationKind = "gems"
	NotificationInfo        NotificationKind = "info"
)

// Notification is a short-lived toast queued for the client. ExpiresAt is
// always CreatedAt + NotificationTTL.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Icon      string           `json:"icon,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}
