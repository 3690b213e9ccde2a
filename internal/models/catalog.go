package models

// Achievement is a static catalog entry. Unlocked state lives on the profile.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// StoreItem is a purchasable catalog entry. Ownership is derived from the
// profile's purchased set, keyed by ImageURL.
type StoreItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	ImageURL string `json:"imageUrl"`
	Type     string `json:"type"`
}

// Gem amounts per rewarded activity.
const (
	RewardBookRead     = 10
	RewardQuizPass     = 5
	RewardQuizGood     = 10
	RewardQuizPerfect  = 15
	RewardStoryCreated = 20
)

// Quiz score thresholds, as fractions of the total.
const (
	QuizPassThreshold = 0.6
	QuizGoodThreshold = 0.8
)

// BooksForBookworm is the finished-book count required by the bookworm_5
// achievement.
const BooksForBookworm = 5

// Achievement IDs.
const (
	AchievementFirstBook  = "first_book"
	AchievementBookworm   = "bookworm_5"
	AchievementCreator    = "creator"
	AchievementQuizMaster = "quiz_master"
	AchievementStreak3    = "streak_3"
	AchievementStreak7    = "streak_7"
)

// AchievementsList is the full achievement catalog, in display order.
var AchievementsList = []Achievement{
	{ID: AchievementFirstBook, Name: "First Chapter", Description: "Finish your first book", Icon: "auto_stories"},
	{ID: AchievementBookworm, Name: "Bookworm", Description: "Finish 5 books", Icon: "library_books"},
	{ID: AchievementCreator, Name: "Storyteller", Description: "Create your first story", Icon: "edit"},
	{ID: AchievementQuizMaster, Name: "Quiz Master", Description: "Get a perfect score on a quiz", Icon: "school"},
	{ID: AchievementStreak3, Name: "On a Roll!", Description: "Maintain a 3-day streak", Icon: "local_fire_department"},
	{ID: AchievementStreak7, Name: "Firestarter", Description: "Maintain a 7-day streak", Icon: "whatshot"},
}

// AchievementByID looks up a catalog entry. The second return value is false
// for unknown IDs.
func AchievementByID(id string) (Achievement, bool) {
	for _, a := range AchievementsList {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// StoreItems is the full store catalog, in display order.
var StoreItems = []StoreItem{
	{ID: "avatar_astronaut", Name: "Astronaut", Cost: 150, ImageURL: "https://storage.googleapis.com/maker-me-assets/assets/generic/1721345465057_astronaut_avatar.png", Type: "avatar"},
	{ID: "avatar_detective", Name: "Detective", Cost: 150, ImageURL: "https://storage.googleapis.com/maker-me-assets/assets/generic/1721345484807_detective_avatar.png", Type: "avatar"},
	{ID: "avatar_artist", Name: "Artist", Cost: 200, ImageURL: "https://storage.googleapis.com/maker-me-assets/assets/generic/1721345500424_artist_avatar.png", Type: "avatar"},
	{ID: "avatar_superhero", Name: "Superhero", Cost: 250, ImageURL: "https://storage.googleapis.com/maker-me-assets/assets/generic/1721345514101_superhero_avatar.png", Type: "avatar"},
	{ID: "avatar_wizard", Name: "Wizard", Cost: 250, ImageURL: "https://storage.googleapis.com/maker-me-assets/assets/generic/1721345529881_wizard_avatar.png", Type: "avatar"},
	{ID: "avatar_ninja", Name: "Ninja", Cost: 300, ImageURL: "https://storage.googleapis.com/maker-me-assets/assets/generic/1721345543789_ninja_avatar.png", Type: "avatar"},
}

// StoreItemByID looks up a store catalog entry.
func StoreItemByID(id string) (StoreItem, bool) {
	for _, item := range StoreItems {
		if item.ID == id {
			return item, true
		}
	}
	return StoreItem{}, false
}
