package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qudsystem/storybook-backend/internal/models"
)

// ProfileUserRepository is the interface for account fields the profile
// service edits
type ProfileUserRepository interface {
	// Method GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method UpdateDisplayName updates the user's display name.
	UpdateDisplayName(ctx context.Context, id int, displayName string) error
	// Method UpdateAvatarURL updates the user's avatar reference.
	UpdateAvatarURL(ctx context.Context, id int, avatarURL string) error
	// Method UpdateLanguage updates the user's preferred language.
	UpdateLanguage(ctx context.Context, id int, language string) error
}

// AvatarAssetStore is the hosted storage for uploaded avatar images
type AvatarAssetStore interface {
	// Method Upload stores the asset under the given folder and returns its
	// public URL.
	Upload(ctx context.Context, data []byte, folder, name string) (string, error)
	// Method Destroy removes a previously uploaded asset.
	Destroy(ctx context.Context, folder, name string) error
}

// ProfileView is the player-facing profile: account fields plus gamification
// state and the achievement catalog with unlocked flags.
type ProfileView struct {
	User         *models.User        `json:"user"`
	Gems         int                 `json:"gems"`
	Streak       int                 `json:"streak"`
	Achievements []AchievementStatus `json:"achievements"`
}

// AchievementStatus is one catalog entry with the user's unlocked state.
type AchievementStatus struct {
	models.Achievement
	Unlocked bool `json:"unlocked"`
}

// profileService implements profile reads and edits.
type profileService struct {
	userRepo    ProfileUserRepository
	profileRepo RewardProfileRepository
	assets      AvatarAssetStore
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo ProfileUserRepository, profileRepo RewardProfileRepository, assets AvatarAssetStore, logger *zap.Logger) *profileService {
	return &profileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		assets:      assets,
		logger:      logger,
	}
}

// GetProfile returns the full player profile, creating the gamification state
// on first access.
func (s *profileService) GetProfile(ctx context.Context, userID int) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievements := make([]AchievementStatus, 0, len(models.AchievementsList))
	for _, a := range models.AchievementsList {
		achievements = append(achievements, AchievementStatus{
			Achievement: a,
			Unlocked:    profile.HasAchievement(a.ID),
		})
	}

	return &ProfileView{
		User:         user,
		Gems:         profile.Gems,
		Streak:       profile.Streak,
		Achievements: achievements,
	}, nil
}

// UpdateDisplayName changes the player's display name
func (s *profileService) UpdateDisplayName(ctx context.Context, userID int, displayName string) error {
	if displayName == "" {
		return fmt.Errorf("display name must not be empty")
	}
	return s.userRepo.UpdateDisplayName(ctx, userID, displayName)
}

// UpdateLanguage changes the player's preferred language
func (s *profileService) UpdateLanguage(ctx context.Context, userID int, language string) error {
	if language != "en" && language != "ar" {
		return fmt.Errorf("unsupported language %q", language)
	}
	return s.userRepo.UpdateLanguage(ctx, userID, language)
}

// SelectAvatar sets the account avatar to a purchased store avatar.
func (s *profileService) SelectAvatar(ctx context.Context, userID int, itemID string) error {
	item, ok := models.StoreItemByID(itemID)
	if !ok {
		return fmt.Errorf("unknown store item %q", itemID)
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if !profile.OwnsAvatar(item.ImageURL) {
		return fmt.Errorf("avatar not owned")
	}

	return s.userRepo.UpdateAvatarURL(ctx, userID, item.ImageURL)
}

// UploadAvatar stores a custom avatar image and points the account at it. The
// upload happens first; if the account update then fails, the uploaded asset
// is destroyed so the two stores cannot drift apart.
func (s *profileService) UploadAvatar(ctx context.Context, userID int, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("avatar image must not be empty")
	}

	name := fmt.Sprintf("user_%d_avatar", userID)
	url, err := s.assets.Upload(ctx, image, "avatars", name)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateAvatarURL(ctx, userID, url); err != nil {
		if destroyErr := s.assets.Destroy(ctx, "avatars", name); destroyErr != nil {
			s.logger.Error("profile: failed to roll back avatar upload",
				zap.Int("user_id", userID), zap.Error(destroyErr))
		}
		return "", err
	}

	return url, nil
}
