package services

import (
	"context"
	"errors"
	"testing"

	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockProfileUserRepo is a mock implementation of ProfileUserRepository
type mockProfileUserRepo struct {
	user        *models.User
	getErr      error
	displayName string
	avatarURL   string
	language    string
	updateErr   error
}

func (m *mockProfileUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockProfileUserRepo) UpdateDisplayName(ctx context.Context, id int, displayName string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.displayName = displayName
	return nil
}

func (m *mockProfileUserRepo) UpdateAvatarURL(ctx context.Context, id int, avatarURL string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.avatarURL = avatarURL
	return nil
}

func (m *mockProfileUserRepo) UpdateLanguage(ctx context.Context, id int, language string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.language = language
	return nil
}

// mockAssetStore is a mock implementation of AvatarAssetStore
type mockAssetStore struct {
	url        string
	uploadErr  error
	destroyed  bool
	destroyErr error
}

func (m *mockAssetStore) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return m.url, nil
}

func (m *mockAssetStore) Destroy(ctx context.Context, folder, name string) error {
	m.destroyed = true
	return m.destroyErr
}

func TestProfileService_GetProfile(t *testing.T) {
	userRepo := &mockProfileUserRepo{user: &models.User{ID: 1, DisplayName: "Kiddo"}}
	profileRepo := &mockProfileRepo{profile: &models.UserProfile{
		UserID:       1,
		Gems:         120,
		Streak:       3,
		Achievements: []string{models.AchievementFirstBook},
	}}
	svc := NewProfileService(userRepo, profileRepo, &mockAssetStore{}, zap.NewNop())

	view, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Kiddo", view.User.DisplayName)
	assert.Equal(t, 120, view.Gems)
	assert.Equal(t, 3, view.Streak)
	require.Len(t, view.Achievements, len(models.AchievementsList))

	unlocked := 0
	for _, status := range view.Achievements {
		if status.Unlocked {
			unlocked++
			assert.Equal(t, models.AchievementFirstBook, status.ID)
		}
	}
	assert.Equal(t, 1, unlocked)
}

func TestProfileService_UpdateDisplayName(t *testing.T) {
	userRepo := &mockProfileUserRepo{}
	svc := NewProfileService(userRepo, &mockProfileRepo{}, &mockAssetStore{}, zap.NewNop())

	require.NoError(t, svc.UpdateDisplayName(context.Background(), 1, "New Name"))
	assert.Equal(t, "New Name", userRepo.displayName)

	assert.Error(t, svc.UpdateDisplayName(context.Background(), 1, ""))
}

func TestProfileService_UpdateLanguage(t *testing.T) {
	userRepo := &mockProfileUserRepo{}
	svc := NewProfileService(userRepo, &mockProfileRepo{}, &mockAssetStore{}, zap.NewNop())

	require.NoError(t, svc.UpdateLanguage(context.Background(), 1, "ar"))
	assert.Equal(t, "ar", userRepo.language)

	assert.Error(t, svc.UpdateLanguage(context.Background(), 1, "fr"))
}

func TestProfileService_SelectAvatar(t *testing.T) {
	ninja, ok := models.StoreItemByID("avatar_ninja")
	require.True(t, ok)

	t.Run("owned avatar", func(t *testing.T) {
		userRepo := &mockProfileUserRepo{}
		profileRepo := &mockProfileRepo{profile: &models.UserProfile{
			UserID:           1,
			PurchasedAvatars: []string{ninja.ImageURL},
		}}
		svc := NewProfileService(userRepo, profileRepo, &mockAssetStore{}, zap.NewNop())

		require.NoError(t, svc.SelectAvatar(context.Background(), 1, "avatar_ninja"))
		assert.Equal(t, ninja.ImageURL, userRepo.avatarURL)
	})

	t.Run("not owned", func(t *testing.T) {
		userRepo := &mockProfileUserRepo{}
		profileRepo := &mockProfileRepo{profile: &models.UserProfile{UserID: 1}}
		svc := NewProfileService(userRepo, profileRepo, &mockAssetStore{}, zap.NewNop())

		assert.Error(t, svc.SelectAvatar(context.Background(), 1, "avatar_ninja"))
		assert.Empty(t, userRepo.avatarURL)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc := NewProfileService(&mockProfileUserRepo{}, &mockProfileRepo{}, &mockAssetStore{}, zap.NewNop())

		assert.Error(t, svc.SelectAvatar(context.Background(), 1, "avatar_unknown"))
	})
}

func TestProfileService_UploadAvatar(t *testing.T) {
	userRepo := &mockProfileUserRepo{}
	assets := &mockAssetStore{url: "https://cdn.example.com/avatars/user_1_avatar.png"}
	svc := NewProfileService(userRepo, &mockProfileRepo{}, assets, zap.NewNop())

	url, err := svc.UploadAvatar(context.Background(), 1, []byte{0x89, 0x50})
	require.NoError(t, err)

	assert.Equal(t, assets.url, url)
	assert.Equal(t, assets.url, userRepo.avatarURL)
	assert.False(t, assets.destroyed)
}

func TestProfileService_UploadAvatar_EmptyImage(t *testing.T) {
	svc := NewProfileService(&mockProfileUserRepo{}, &mockProfileRepo{}, &mockAssetStore{}, zap.NewNop())

	_, err := svc.UploadAvatar(context.Background(), 1, nil)
	assert.Error(t, err)
}

func TestProfileService_UploadAvatar_RollsBackOnUpdateFailure(t *testing.T) {
	userRepo := &mockProfileUserRepo{updateErr: errors.New("database error")}
	assets := &mockAssetStore{url: "https://cdn.example.com/avatars/user_1_avatar.png"}
	svc := NewProfileService(userRepo, &mockProfileRepo{}, assets, zap.NewNop())

	_, err := svc.UploadAvatar(context.Background(), 1, []byte{0x89})
	assert.Error(t, err)
	assert.True(t, assets.destroyed)
}
