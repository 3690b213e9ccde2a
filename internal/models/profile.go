package models

// DateLayout is the wire and storage format for activity dates. Streak
// arithmetic works on calendar days, not instants, so dates are kept as plain
// strings and compared after parsing in the user's day boundary.
const DateLayout = "2006-01-02"

// UserProfile holds the gamification state of one user. Gems and Streak never
// go negative; LastActivityDate is empty until the first rewarded activity.
// Profiles are mutated only through the reward, streak, and purchase gateways.
type UserProfile struct {
	UserID           int      `json:"userId"`
	Gems             int      `json:"gems"`
	Streak           int      `json:"streak"`
	LastActivityDate string   `json:"lastActivityDate"`
	Achievements     []string `json:"achievements"`
	PurchasedAvatars []string `json:"purchasedAvatars"`
}

// HasAchievement reports whether the achievement is already unlocked.
func (p *UserProfile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// OwnsAvatar reports whether the avatar image URL has been purchased.
func (p *UserProfile) OwnsAvatar(imageURL string) bool {
	for _, a := range p.PurchasedAvatars {
		if a == imageURL {
			return true
		}
	}
	return false
}

// StreakResult is the outcome of a streak update.
type StreakResult struct {
	Streak   int  `json:"streak"`
	Extended bool `json:"extended"`
}

// RewardResult summarises what one rewarded activity produced.
type RewardResult struct {
	GemsAwarded     int            `json:"gemsAwarded"`
	NewAchievements []Achievement  `json:"newAchievements"`
	Streak          StreakResult   `json:"streak"`
	Notifications   []Notification `json:"notifications"`
	Profile         *UserProfile   `json:"profile,omitempty"`
}

// PurchaseOutcome is the machine-readable result of a store purchase attempt.
type PurchaseOutcome string

const (
	PurchaseOK                PurchaseOutcome = "ok"
	PurchaseInsufficientFunds PurchaseOutcome = "insufficient_funds"
	PurchaseAlreadyOwned      PurchaseOutcome = "already_owned"
)

// PurchaseResult carries the outcome plus a player-facing message.
type PurchaseResult struct {
	Outcome PurchaseOutcome `json:"outcome"`
	Message string          `json:"message"`
	Profile *UserProfile    `json:"profile,omitempty"`
}
