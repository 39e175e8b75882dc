package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"warbler/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("save user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user exists failed: %w", err)
	}
	return count > 0, nil
}

// IDs returns up to limit user ids in ascending order; limit <= 0 means all.
func (r *UserRepository) IDs(ctx context.Context, limit int) ([]uint, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ids []uint
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list user ids failed: %w", err)
	}
	return ids, nil
}

// Search returns users whose username contains query, ordered by id.
// LIKE is only a prefilter: MySQL and SQLite compare case-insensitively,
// so matches are re-checked with a case-sensitive substring test.
func (r *UserRepository) Search(ctx context.Context, query string) ([]model.User, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if query != "" {
		q = q.Where("username LIKE ? ESCAPE '!'", "%"+escapeLike(query)+"%")
	}

	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users failed: %w", err)
	}
	if query == "" {
		return users, nil
	}

	matched := users[:0]
	for _, u := range users {
		if strings.Contains(u.Username, query) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete user failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
