package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "mellow/internal/errors"
	"mellow/internal/model"
)

// UserRepository defines credential store operations.
type UserRepository interface {
	// Create inserts the account if its identifier is not taken. A taken identifier
	// is reported as errors.ErrDuplicateIdentifier by the unique index, not by a prior read.
	Create(ctx context.Context, user *model.UserAccount) error
	FindByID(ctx context.Context, id uint) (*model.UserAccount, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.UserAccount, error)
	UpdateProfileImage(ctx context.Context, identifier string, image *string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.UserAccount) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateIdentifier
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.UserAccount, error) {
	var user model.UserAccount
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier is an exact match; no case folding or trimming is applied.
func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.UserAccount, error) {
	var user model.UserAccount
	if err := r.db.WithContext(ctx).Where("email_or_phone = ?", identifier).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, identifier string, image *string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.UserAccount{}).
		Where("email_or_phone = ?", identifier).
		Update("profile_image", image)
	if res.Error != nil {
		return 0, fmt.Errorf("update profile image: %w", res.Error)
	}
	return res.RowsAffected, nil
}
