package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"warbler/internal/model"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, follow *model.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		return fmt.Errorf("create follow failed: %w", err)
	}
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check follow exists failed: %w", err)
	}
	return count > 0, nil
}

// Delete removes the edge and reports whether one existed.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.Follow{})
	if result.Error != nil {
		return false, fmt.Errorf("delete follow failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteByUserID removes every edge touching userID in either direction.
func (r *FollowRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? OR followed_id = ?", userID, userID).
		Delete(&model.Follow{}).Error; err != nil {
		return fmt.Errorf("delete follows by user failed: %w", err)
	}
	return nil
}

// ListFollowers returns the users following userID.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list followers failed: %w", err)
	}
	return users, nil
}

// ListFollowing returns the users userID follows.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list following failed: %w", err)
	}
	return users, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followed_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count followers failed: %w", err)
	}
	return count, nil
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count following failed: %w", err)
	}
	return count, nil
}
