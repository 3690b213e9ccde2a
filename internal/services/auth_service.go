package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/qudsystem/storybook-backend/internal/auth"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/qudsystem/storybook-backend/internal/repositories"
)

var (
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a wrong email or password. The two
	// cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthUserRepository is the interface for user account data access
type AuthUserRepository interface {
	// Method Create creates a new user account. The created ID is written back
	// to the user struct.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// If the user does not exist, repositories.ErrNotFound will be returned.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If the user does not exist, repositories.ErrNotFound will be returned.
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// AuthTokenRepository is the interface for refresh token storage
type AuthTokenRepository interface {
	// Method Store saves a refresh token for a user.
	Store(ctx context.Context, userID int, token string, expiresAt time.Time) error
	// Method UserIDForToken resolves a refresh token to its user. Expired
	// tokens resolve to repositories.ErrNotFound.
	UserIDForToken(ctx context.Context, token string) (int, error)
	// Method Revoke deletes a refresh token.
	Revoke(ctx context.Context, token string) error
}

// authService implements registration, login and token refresh.
type authService struct {
	userRepo       AuthUserRepository
	tokenRepo      AuthTokenRepository
	tokenGenerator *auth.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo AuthUserRepository, tokenRepo AuthTokenRepository, tokenGenerator *auth.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Register creates a new account and returns the user with a token pair
func (s *authService) Register(ctx context.Context, email, password, displayName string) (*models.User, *models.TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return nil, nil, fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Language:     "en",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID))
	return user, tokens, nil
}

// Login authenticates an account and returns the user with a token pair
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The used
// token is revoked, so each refresh token works exactly once.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := s.tokenRepo.UserIDForToken(ctx, refreshToken)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, userID)
}

// Logout revokes a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.Revoke(ctx, refreshToken)
}

func (s *authService) issueTokens(ctx context.Context, userID int) (*models.TokenPair, error) {
	access, refresh, err := s.tokenGenerator.GenerateTokens(userID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.tokenGenerator.RefreshTokenExpiry())
	if err := s.tokenRepo.Store(ctx, userID, refresh, expiresAt); err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
