package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/qudsystem/storybook-backend/internal/i18n"
	"github.com/qudsystem/storybook-backend/internal/models"
)

// LanguageResolver reports the user's interface language so player-facing
// messages come out in it
type LanguageResolver interface {
	// Method LanguageOf retrieves the user's preferred language code.
	//
	// If some error occurs during data retrieval, the error will be returned.
	LanguageOf(ctx context.Context, userID int) (string, error)
}

// RewardProfileRepository is the interface that wraps profile mutations needed
// by the reward engine
type RewardProfileRepository interface {
	// Method GetOrCreate retrieves the user's profile, creating an empty one on
	// first access.
	//
	// "userID" parameter is used to identify the user.
	// If some error occurs during data retrieval, the error will be returned.
	GetOrCreate(ctx context.Context, userID int) (*models.UserProfile, error)
	// Method UpdateStreak advances the daily streak in one transaction.
	//
	// "today" and "yesterday" parameters are calendar dates in YYYY-MM-DD form.
	// Same-day calls are a no-op; the day after the last activity extends the
	// streak by one; any longer gap resets it to 1.
	// If some error occurs during the update, the error will be returned.
	UpdateStreak(ctx context.Context, userID int, today, yesterday string) (models.StreakResult, error)
	// Method AddGems adds gems to the user's balance.
	//
	// If some error occurs during the update, the error will be returned.
	AddGems(ctx context.Context, userID, amount int) error
	// Method GrantAchievement unlocks an achievement for the user.
	//
	// Returns true if the achievement was newly granted, false if it was
	// already unlocked.
	// If some error occurs during the update, the error will be returned.
	GrantAchievement(ctx context.Context, userID int, achievementID string) (bool, error)
	// Method Get retrieves the user's profile without creating it.
	//
	// If the profile does not exist, repositories.ErrNotFound will be returned.
	Get(ctx context.Context, userID int) (*models.UserProfile, error)
}

// RewardBookRepository is the interface for book counts needed by achievement
// eligibility
type RewardBookRepository interface {
	// Method CountFinished counts the user's finished books from storage.
	//
	// If some error occurs during data retrieval, the error will be returned.
	CountFinished(ctx context.Context, userID int) (int, error)
}

// rewardService implements the reward engine: one rewarded activity in, streak
// update, gem award, achievement grants and notifications out.
type rewardService struct {
	profileRepo RewardProfileRepository
	bookRepo    RewardBookRepository
	notifier    *Notifier
	languages   LanguageResolver
	translator  *i18n.Translator
	clock       Clock
	logger      *zap.Logger
}

// NewRewardService creates a new reward service
func NewRewardService(profileRepo RewardProfileRepository, bookRepo RewardBookRepository, notifier *Notifier, languages LanguageResolver, translator *i18n.Translator, clock Clock, logger *zap.Logger) *rewardService {
	return &rewardService{
		profileRepo: profileRepo,
		bookRepo:    bookRepo,
		notifier:    notifier,
		languages:   languages,
		translator:  translator,
		clock:       clock,
		logger:      logger,
	}
}

// language resolves the user's interface language, defaulting to English
func (s *rewardService) language(ctx context.Context, userID int) string {
	lang, err := s.languages.LanguageOf(ctx, userID)
	if err != nil {
		return "en"
	}
	return lang
}

// TriggerReward processes one rewarded activity. The call is best effort:
// persistence failures are logged and reflected as missing pieces of the
// result, never as an error to the caller, so a reward hiccup cannot break the
// reading flow. With no valid user the call is a no-op.
func (s *rewardService) TriggerReward(ctx context.Context, userID int, activity models.Activity) *models.RewardResult {
	result := &models.RewardResult{
		NewAchievements: []models.Achievement{},
		Notifications:   []models.Notification{},
	}

	if userID <= 0 {
		return result
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("reward: failed to load profile", zap.Int("user_id", userID), zap.Error(err))
		return result
	}

	// Streak first: achievement eligibility below needs the updated value.
	now := s.clock.Now()
	today := now.Format(models.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(models.DateLayout)

	streak, err := s.profileRepo.UpdateStreak(ctx, userID, today, yesterday)
	if err != nil {
		s.logger.Error("reward: failed to update streak", zap.Int("user_id", userID), zap.Error(err))
		streak = models.StreakResult{}
	}
	result.Streak = streak

	gems := activity.GemAward()
	if gems > 0 {
		if err := s.profileRepo.AddGems(ctx, userID, gems); err != nil {
			s.logger.Error("reward: failed to add gems", zap.Int("user_id", userID), zap.Error(err))
			gems = 0
		}
	}
	result.GemsAwarded = gems

	lang := s.language(ctx, userID)

	for _, id := range s.eligibleAchievements(ctx, userID, profile, activity, streak) {
		granted, err := s.profileRepo.GrantAchievement(ctx, userID, id)
		if err != nil {
			s.logger.Error("reward: failed to grant achievement",
				zap.Int("user_id", userID), zap.String("achievement", id), zap.Error(err))
			continue
		}
		if !granted {
			continue
		}

		achievement, ok := models.AchievementByID(id)
		if !ok {
			continue
		}
		result.NewAchievements = append(result.NewAchievements, achievement)

		message := s.translator.In(lang, "rewards.achievement", map[string]string{"name": achievement.Name})
		notification := s.notifier.Push(userID, models.NotificationAchievement, message, achievement.Icon)
		result.Notifications = append(result.Notifications, notification)
	}

	if gems > 0 {
		message := s.translator.In(lang, "rewards.gems", map[string]string{"count": strconv.Itoa(gems)})
		notification := s.notifier.Push(userID, models.NotificationGems, message, "diamond")
		result.Notifications = append(result.Notifications, notification)
	}

	updated, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("reward: failed to reload profile", zap.Int("user_id", userID), zap.Error(err))
		updated = profile
	}
	result.Profile = updated

	return result
}

// eligibleAchievements returns the achievement IDs this activity could newly
// unlock, in catalog order. Already-unlocked IDs are filtered here; the
// idempotent grant in the repository is the final arbiter.
func (s *rewardService) eligibleAchievements(ctx context.Context, userID int, profile *models.UserProfile, activity models.Activity, streak models.StreakResult) []string {
	var candidates []string

	switch activity.Kind {
	case models.ActivityBookRead:
		candidates = append(candidates, models.AchievementFirstBook)

		finished, err := s.bookRepo.CountFinished(ctx, userID)
		if err != nil {
			s.logger.Error("reward: failed to count finished books", zap.Int("user_id", userID), zap.Error(err))
		} else if finished >= models.BooksForBookworm {
			candidates = append(candidates, models.AchievementBookworm)
		}
	case models.ActivityQuizComplete:
		if activity.Total > 0 && activity.Score == activity.Total {
			candidates = append(candidates, models.AchievementQuizMaster)
		}
	case models.ActivityStoryCreated:
		candidates = append(candidates, models.AchievementCreator)
	}

	// Streak achievements only when the streak actually moved today.
	if streak.Extended {
		if streak.Streak >= 3 {
			candidates = append(candidates, models.AchievementStreak3)
		}
		if streak.Streak >= 7 {
			candidates = append(candidates, models.AchievementStreak7)
		}
	}

	eligible := candidates[:0]
	for _, id := range candidates {
		if !profile.HasAchievement(id) {
			eligible = append(eligible, id)
		}
	}

	return eligible
}
