package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"usermgmt/internal/auth"
	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
)

// RegisterInput carries the fields accepted on sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.UserResponse, error)
	Authenticate(ctx context.Context, email, password string) (*model.UserResponse, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

var errBlankName = apperrors.Validation([]apperrors.FieldError{{Field: "name", Message: "must not be blank"}})

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.UserResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errBlankName
	}
	email := NormalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent sign-up; the unique index caught it
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user.ToResponse(), nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user.ToResponse(), nil
}

// Logout revokes token until it expires. Invalid tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.jwtService.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.Remaining(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
