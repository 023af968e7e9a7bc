package repository

import (
	"context"

	"gorm.io/gorm"

	"usermgmt/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint, changes *model.User) (*model.User, error)
	Delete(ctx context.Context, id uint) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the non-zero fields of changes to the user and returns the
// refreshed row. updated_at is always bumped.
func (r *userRepository) Update(ctx context.Context, id uint, changes *model.User) (*model.User, error) {
	var updated *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			return err
		}
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the user and returns the row as it was before deletion.
func (r *userRepository) Delete(ctx context.Context, id uint) (*model.User, error) {
	var deleted *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		deleted = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
