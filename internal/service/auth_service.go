package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mellow/internal/auth"
	apperrors "mellow/internal/errors"
	"mellow/internal/model"
	"mellow/internal/repository"
)

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Name         string
	Username     string
	EmailOrPhone string
	Password     string
	ProfileImage *string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User         *model.PublicUser
	AccessToken  string
	RefreshToken string
}

// AuthService handles signup, login and token lifecycle.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.PublicUser, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger.Named("auth"),
	}
}

// Signup validates, hashes and inserts a new account and returns its public record.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.PublicUser, error) {
	if in.Name == "" || in.Username == "" || in.EmailOrPhone == "" || in.Password == "" {
		return nil, apperrors.ErrValidation
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.ErrPasswordTooLong
	}

	// Fast path so a taken identifier does not pay for a bcrypt round.
	// The unique index in Create stays the authority.
	existing, err := s.userRepo.FindByIdentifier(ctx, in.EmailOrPhone)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateIdentifier
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check identifier", zap.Error(err))
		return nil, fmt.Errorf("check identifier: %w", apperrors.ErrPersistence)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrHashing, err)
	}

	user := &model.UserAccount{
		Name:         in.Name,
		Username:     in.Username,
		EmailOrPhone: in.EmailOrPhone,
		PasswordHash: hash,
		ProfileImage: normalizeImage(in.ProfileImage),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentifier) {
			return nil, err
		}
		s.logger.Error("create user", zap.Error(err))
		return nil, fmt.Errorf("create user: %w", apperrors.ErrPersistence)
	}

	created, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		s.logger.Error("fetch created user", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("fetch created user: %w", apperrors.ErrPersistence)
	}

	s.logger.Info("user created", zap.Uint("user_id", created.ID))
	return created.Public(), nil
}

// Login authenticates by exact identifier match and returns the public record with tokens.
// Unknown identifiers and wrong passwords yield the same ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error("find user", zap.Error(err))
		return nil, fmt.Errorf("find user: %w", apperrors.ErrPersistence)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("verify password", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.EmailOrPhone)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.EmailOrPhone)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.EmailOrPhone, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	record, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	if record.UserID != claims.UserID || record.Identifier != claims.Identifier() {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Identifier())
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

// normalizeImage maps an empty image reference to no image.
func normalizeImage(image *string) *string {
	if image == nil || *image == "" {
		return nil
	}
	return image
}
