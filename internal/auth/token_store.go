package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mellow/internal/cache"
)

const refreshTokenKeyPrefix = "mellow:refresh_token:"

// ErrRefreshTokenNotFound is returned when a refresh token id is unknown, expired or revoked.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, identifier string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (*RefreshRecord, error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
}

// RefreshRecord is what is kept in Redis for each issued refresh token.
type RefreshRecord struct {
	UserID     uint   `json:"user_id"`
	Identifier string `json:"identifier"`
}

// TokenStore handles storage and retrieval of refresh tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, identifier string, ttl time.Duration) error {
	record := RefreshRecord{UserID: userID, Identifier: identifier}
	if err := s.cache.SetJSON(ctx, refreshTokenKeyPrefix+tokenID, record, ttl); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (*RefreshRecord, error) {
	var record RefreshRecord
	if !s.cache.GetJSON(ctx, refreshTokenKeyPrefix+tokenID, &record) {
		return nil, ErrRefreshTokenNotFound
	}
	return &record, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}
