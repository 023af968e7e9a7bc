package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"usermgmt/internal/auth"
	"usermgmt/internal/cache"
	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role model.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// UserPatch lists every field a user update may carry. Nil fields are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *model.Role
}

// UserService exposes domain operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUser(ctx context.Context, id uint) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, id uint, patch UserPatch) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, id uint) (*model.UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	cache  *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, cache *cache.Client) UserService {
	return &userService{repo: repo, hasher: hasher, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]model.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *users[i].ToResponse())
	}
	return out, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.UserResponse, error) {
	var cached model.UserResponse
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get user")
	}

	resp := user.ToResponse()
	s.cache.SetJSON(ctx, s.cacheKey(id), resp, userCacheTTL)
	return resp, nil
}

// UpdateUser applies patch to the user. Callers may update themselves;
// admins may update anyone and are the only ones allowed to change roles.
func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uint, patch UserPatch) (*model.UserResponse, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden.WithMessage("you can only update your own account")
	}
	if patch.Role != nil && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden.WithMessage("only admins can change roles")
	}

	var name string
	if patch.Name != nil {
		if name = strings.TrimSpace(*patch.Name); name == "" {
			return nil, errBlankName
		}
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "find user")
	}

	changes := &model.User{Name: name}
	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != current.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			if err == nil && other != nil {
				return nil, apperrors.ErrDuplicateEmail
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check email: %w", err)
			}
			changes.Email = email
		}
	}
	if patch.Password != nil {
		hashed, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = hashed
	}
	if patch.Role != nil {
		changes.Role = *patch.Role
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, notFoundOr(err, "update user")
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return updated.ToResponse(), nil
}

// DeleteUser removes the user. Callers may delete themselves; admins may
// delete anyone except their own account.
func (s *userService) DeleteUser(ctx context.Context, actor Actor, id uint) (*model.UserResponse, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden.WithMessage("you can only delete your own account")
	}
	if actor.ID == id && actor.IsAdmin() {
		return nil, apperrors.ErrForbidden.WithMessage("admins cannot delete their own account")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "delete user")
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return deleted.ToResponse(), nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
