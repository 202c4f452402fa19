package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mellow/internal/auth"
	apperrors "mellow/internal/errors"
	"mellow/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.UserAccount) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.UserAccount, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, uint) *model.UserAccount); ok {
		return fn(ctx, id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserAccount), args.Error(1)
}

func (m *MockUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.UserAccount, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserAccount), args.Error(1)
}

func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, identifier string, image *string) (int64, error) {
	args := m.Called(ctx, identifier, image)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, identifier string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, identifier, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (*auth.RefreshRecord, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshRecord), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// failingHasher always fails to hash.
type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }
func (failingHasher) Verify(string, string) error { return auth.ErrPasswordMismatch }

func strPtr(s string) *string { return &s }

func newTestAuthService(repo *MockUserRepository, store *MockTokenStore) AuthService {
	return NewAuthService(repo, auth.NewBcryptHasher(4), auth.NewJWTService("test-secret"), store, zap.NewNop())
}

func TestAuthService_Signup(t *testing.T) {
	valid := SignupInput{
		Name:         "Ada Lovelace",
		Username:     "ada",
		EmailOrPhone: "ada@example.com",
		Password:     "password123",
		ProfileImage: strPtr("file:///ada.png"),
	}

	tests := []struct {
		name          string
		input         SignupInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful signup",
			input: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.UserAccount")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*model.UserAccount).ID = 1
					}).
					Return(nil)
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.UserAccount{
					ID:           1,
					Name:         "Ada Lovelace",
					Username:     "ada",
					EmailOrPhone: "ada@example.com",
					PasswordHash: "$2a$04$hash",
					ProfileImage: strPtr("file:///ada.png"),
					CreatedAt:    time.Now(),
				}, nil)
			},
		},
		{
			name:          "missing password",
			input:         SignupInput{Name: "Ada", Username: "ada", EmailOrPhone: "ada@example.com"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "missing username",
			input:         SignupInput{Name: "Ada", EmailOrPhone: "ada@example.com", Password: "x"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "password longer than bcrypt accepts",
			input:         SignupInput{Name: "Ada", Username: "ada", EmailOrPhone: "ada@example.com", Password: strings.Repeat("p", auth.MaxPasswordBytes+1)},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrPasswordTooLong,
		},
		{
			name:  "identifier already registered",
			input: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(&model.UserAccount{ID: 3}, nil)
			},
			expectedError: apperrors.ErrDuplicateIdentifier,
		},
		{
			name:  "concurrent signup loses at the unique index",
			input: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicateIdentifier)
			},
			expectedError: apperrors.ErrDuplicateIdentifier,
		},
		{
			name:  "lookup fails",
			input: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, errors.New("connection reset"))
			},
			expectedError: apperrors.ErrPersistence,
		},
		{
			name:  "insert fails",
			input: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			expectedError: apperrors.ErrPersistence,
		},
		{
			name:  "created row unreadable",
			input: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.On("FindByID", mock.Anything, uint(0)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := newTestAuthService(mockRepo, new(MockTokenStore))
			user, err := service.Signup(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.input.EmailOrPhone, user.EmailOrPhone)
				assert.Equal(t, tt.input.Name, user.Name)
				assert.Equal(t, "file:///ada.png", *user.ProfileImage)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Signup_HashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	var inserted *model.UserAccount
	mockRepo.On("FindByIdentifier", mock.Anything, "5551234567").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.UserAccount")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*model.UserAccount)
			inserted.ID = 5
		}).
		Return(nil)
	mockRepo.On("FindByID", mock.Anything, uint(5)).Return(func(ctx context.Context, id uint) *model.UserAccount {
		return inserted
	}, nil)

	service := newTestAuthService(mockRepo, new(MockTokenStore))
	user, err := service.Signup(context.Background(), SignupInput{
		Name: "Bo", Username: "bo", EmailOrPhone: "5551234567", Password: "hunter2", ProfileImage: strPtr(""),
	})
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", inserted.PasswordHash)
	assert.NoError(t, auth.NewBcryptHasher(4).Verify(inserted.PasswordHash, "hunter2"))
	assert.Nil(t, user.ProfileImage, "empty image is stored as no image")
}

func TestAuthService_Signup_HashingError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := NewAuthService(mockRepo, failingHasher{}, auth.NewJWTService("s"), new(MockTokenStore), zap.NewNop())
	_, err := service.Signup(context.Background(), SignupInput{
		Name: "Ada", Username: "ada", EmailOrPhone: "ada@example.com", Password: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrHashing)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := auth.NewBcryptHasher(4).Hash("password123")
	require.NoError(t, err)
	stored := &model.UserAccount{
		ID:           11,
		Name:         "Ada",
		Username:     "ada",
		EmailOrPhone: "ada@example.com",
		PasswordHash: hashed,
	}

	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:       "successful login",
			identifier: "ada@example.com",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(stored, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"), uint(11), "ada@example.com", auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:       "unknown identifier",
			identifier: "nobody@example.com",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByIdentifier", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:       "wrong password",
			identifier: "ada@example.com",
			password:   "nope",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:       "username is not a lookup key",
			identifier: "ada",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByIdentifier", mock.Anything, "ada").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:       "database down",
			identifier: "ada@example.com",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(nil, errors.New("i/o timeout"))
			},
			expectedError: apperrors.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			service := newTestAuthService(mockRepo, mockTokenStore)
			result, err := service.Login(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.Equal(t, "ada@example.com", result.User.EmailOrPhone)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	hashed, err := auth.NewBcryptHasher(4).Hash("right")
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByIdentifier", mock.Anything, "ada@example.com").Return(&model.UserAccount{ID: 1, EmailOrPhone: "ada@example.com", PasswordHash: hashed}, nil)
	mockRepo.On("FindByIdentifier", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := newTestAuthService(mockRepo, new(MockTokenStore))
	_, wrongPassword := service.Login(context.Background(), "ada@example.com", "wrong")
	_, unknownUser := service.Login(context.Background(), "ghost@example.com", "right")

	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(11, "ada@example.com")
	require.NoError(t, err)

	t.Run("refresh issues access token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(&auth.RefreshRecord{UserID: 11, Identifier: "ada@example.com"}, nil)

		service := NewAuthService(new(MockUserRepository), auth.NewBcryptHasher(4), jwtService, store, zap.NewNop())
		accessToken, err := service.RefreshToken(context.Background(), refreshToken)
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", claims.Identifier())
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("GetRefreshToken", mock.Anything, tokenID).Return(nil, auth.ErrRefreshTokenNotFound)

		service := NewAuthService(new(MockUserRepository), auth.NewBcryptHasher(4), jwtService, store, zap.NewNop())
		_, err := service.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		accessToken, err := jwtService.GenerateAccessToken(11, "ada@example.com")
		require.NoError(t, err)

		service := NewAuthService(new(MockUserRepository), auth.NewBcryptHasher(4), jwtService, new(MockTokenStore), zap.NewNop())
		_, err = service.RefreshToken(context.Background(), accessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("logout deletes the token id", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

		service := NewAuthService(new(MockUserRepository), auth.NewBcryptHasher(4), jwtService, store, zap.NewNop())
		require.NoError(t, service.Logout(context.Background(), refreshToken))
		store.AssertExpectations(t)
	})

	t.Run("access token cannot log out", func(t *testing.T) {
		accessToken, err := jwtService.GenerateAccessToken(11, "ada@example.com")
		require.NoError(t, err)

		store := new(MockTokenStore)
		service := NewAuthService(new(MockUserRepository), auth.NewBcryptHasher(4), jwtService, store, zap.NewNop())
		assert.ErrorIs(t, service.Logout(context.Background(), accessToken), apperrors.ErrInvalidRefreshToken)
		store.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("logout with garbage", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), auth.NewBcryptHasher(4), jwtService, new(MockTokenStore), zap.NewNop())
		assert.ErrorIs(t, service.Logout(context.Background(), "garbage"), apperrors.ErrInvalidRefreshToken)
	})
}
