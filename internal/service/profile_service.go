package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mellow/internal/cache"
	apperrors "mellow/internal/errors"
	"mellow/internal/model"
	"mellow/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// ProfileService exposes profile reads and the avatar mutation.
type ProfileService interface {
	GetProfile(ctx context.Context, identifier string) (*model.PublicUser, error)
	UpdateProfileImage(ctx context.Context, identifier string, image *string) error
}

type profileService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewProfileService builds a ProfileService with repository and cache.
func NewProfileService(repo repository.UserRepository, cache *cache.Client) ProfileService {
	return &profileService{repo: repo, cache: cache}
}

func (s *profileService) cacheKey(identifier string) string {
	return fmt.Sprintf("mellow:profile:%s", identifier)
}

func (s *profileService) GetProfile(ctx context.Context, identifier string) (*model.PublicUser, error) {
	var cached model.PublicUser
	if s.cache.GetJSON(ctx, s.cacheKey(identifier), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", apperrors.ErrPersistence)
	}

	public := user.Public()
	_ = s.cache.SetJSON(ctx, s.cacheKey(identifier), public, profileCacheTTL)
	return public, nil
}

// UpdateProfileImage replaces the avatar of the account registered under identifier.
// A nil image is a validation error; an empty one clears the avatar.
func (s *profileService) UpdateProfileImage(ctx context.Context, identifier string, image *string) error {
	if identifier == "" || image == nil {
		return apperrors.ErrValidation
	}

	affected, err := s.repo.UpdateProfileImage(ctx, identifier, normalizeImage(image))
	if err != nil {
		return fmt.Errorf("update profile image: %w", apperrors.ErrPersistence)
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}

	_ = s.cache.Delete(ctx, s.cacheKey(identifier))
	return nil
}
