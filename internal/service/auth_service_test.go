package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"usermgmt/internal/auth"
	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
)

func newTestHasher() auth.PasswordHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedRole  model.Role
		expectedError error
	}{
		{
			name:  "successful registration defaults role",
			input: RegisterInput{Name: "John", Email: "John@Example.com ", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "john@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "john@example.com" && u.PasswordHash != "password123" && u.Role == model.RoleUser
				})).Return(nil)
			},
			expectedRole: model.RoleUser,
		},
		{
			name:  "explicit admin role",
			input: RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password123", Role: model.RoleAdmin},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleAdmin,
		},
		{
			name:  "user already exists",
			input: RegisterInput{Name: "John", Email: "existing@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 7, Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "unique index violation on insert",
			input: RegisterInput{Name: "John", Email: "race@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:          "whitespace-only name",
			input:         RegisterInput{Name: "   ", Email: "blank@example.com", Password: "password123"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.Validation(nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, newTestHasher(), auth.NewJWTService("test-secret", time.Minute), new(MockTokenStore))
			user, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, user.ID)
				assert.Equal(t, NormalizeEmail(tt.input.Email), user.Email)
				assert.Equal(t, tt.expectedRole, user.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "john@example.com").Return(nil, errors.New("connection refused"))

	service := NewAuthService(mockRepo, newTestHasher(), auth.NewJWTService("test-secret", time.Minute), new(MockTokenStore))
	user, err := service.Register(context.Background(), RegisterInput{Name: "John", Email: "john@example.com", Password: "password123"})

	assert.Error(t, err)
	assert.Nil(t, user)
	var appErr *apperrors.Error
	assert.False(t, errors.As(err, &appErr), "infrastructure errors carry no domain code")
}

func TestAuthService_Authenticate(t *testing.T) {
	hasher := newTestHasher()
	hashed, err := hasher.Hash("password123")
	require.NoError(t, err)

	stored := &model.User{ID: 3, Name: "John", Email: "john@example.com", PasswordHash: hashed, Role: model.RoleUser}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful sign-in",
			email:    "JOHN@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "john@example.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "john@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "john@example.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, hasher, auth.NewJWTService("test-secret", time.Minute), new(MockTokenStore))
			user, err := service.Authenticate(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored.ID, user.ID)
				assert.Equal(t, "john@example.com", user.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Minute)
	token, err := jwtService.Issue(1, "john@example.com", model.RoleUser)
	require.NoError(t, err)
	claims, err := jwtService.Verify(token)
	require.NoError(t, err)

	t.Run("revokes valid token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 0 && ttl <= time.Minute
		})).Return(nil)

		service := NewAuthService(new(MockUserRepository), newTestHasher(), jwtService, store)
		assert.NoError(t, service.Logout(context.Background(), token))
		store.AssertExpectations(t)
	})

	t.Run("ignores invalid or missing token", func(t *testing.T) {
		store := new(MockTokenStore)
		service := NewAuthService(new(MockUserRepository), newTestHasher(), jwtService, store)
		assert.NoError(t, service.Logout(context.Background(), "garbage"))
		assert.NoError(t, service.Logout(context.Background(), ""))
		store.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})
}
