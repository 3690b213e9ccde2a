package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qudsystem/storybook-backend/internal/i18n"
	"github.com/qudsystem/storybook-backend/internal/models"
)

// StoreProfileRepository is the interface for profile access needed by the
// store
type StoreProfileRepository interface {
	// Method GetOrCreate retrieves the user's profile, creating an empty one on
	// first access.
	GetOrCreate(ctx context.Context, userID int) (*models.UserProfile, error)
	// Method Purchase spends gems on a store item in one transaction. The gem
	// decrement and the ownership insert commit together or not at all.
	//
	// Returns the machine-readable outcome. A failed precondition (not enough
	// gems, already owned) is an outcome, not an error.
	Purchase(ctx context.Context, userID int, cost int, imageURL string) (models.PurchaseOutcome, error)
}

// storeService implements the gem store: catalog listing and purchases.
type storeService struct {
	profileRepo StoreProfileRepository
	languages   LanguageResolver
	translator  *i18n.Translator
	logger      *zap.Logger
}

// NewStoreService creates a new store service
func NewStoreService(profileRepo StoreProfileRepository, languages LanguageResolver, translator *i18n.Translator, logger *zap.Logger) *storeService {
	return &storeService{
		profileRepo: profileRepo,
		languages:   languages,
		translator:  translator,
		logger:      logger,
	}
}

// StoreItemView is a catalog entry with the user's ownership resolved.
type StoreItemView struct {
	models.StoreItem
	Owned bool `json:"owned"`
}

// ListItems returns the store catalog with ownership resolved against the
// user's purchased set.
func (s *storeService) ListItems(ctx context.Context, userID int) ([]StoreItemView, error) {
	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	items := make([]StoreItemView, 0, len(models.StoreItems))
	for _, item := range models.StoreItems {
		items = append(items, StoreItemView{
			StoreItem: item,
			Owned:     profile.OwnsAvatar(item.ImageURL),
		})
	}

	return items, nil
}

// PurchaseItem attempts to buy a catalog item. Unknown item IDs and
// infrastructure failures are errors; failed preconditions come back as a
// result with a player-facing message.
func (s *storeService) PurchaseItem(ctx context.Context, userID int, itemID string) (*models.PurchaseResult, error) {
	item, ok := models.StoreItemByID(itemID)
	if !ok {
		return nil, fmt.Errorf("unknown store item %q", itemID)
	}

	if _, err := s.profileRepo.GetOrCreate(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	outcome, err := s.profileRepo.Purchase(ctx, userID, item.Cost, item.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase item: %w", err)
	}

	lang := "en"
	if l, err := s.languages.LanguageOf(ctx, userID); err == nil {
		lang = l
	}

	result := &models.PurchaseResult{Outcome: outcome}
	switch outcome {
	case models.PurchaseOK:
		result.Message = s.translator.In(lang, "store.purchased", map[string]string{"name": item.Name})
	case models.PurchaseInsufficientFunds:
		result.Message = s.translator.In(lang, "store.notEnoughGems", nil)
	case models.PurchaseAlreadyOwned:
		result.Message = s.translator.In(lang, "store.alreadyOwned", nil)
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("store: failed to reload profile", zap.Int("user_id", userID), zap.Error(err))
	} else {
		result.Profile = profile
	}

	return result, nil
}
