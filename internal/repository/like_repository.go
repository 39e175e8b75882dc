package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"warbler/internal/model"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Create(ctx context.Context, like *model.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return fmt.Errorf("create like failed: %w", err)
	}
	return nil
}

// Delete removes the edge and reports whether one existed.
func (r *LikeRepository) Delete(ctx context.Context, userID, messageID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&model.Like{})
	if result.Error != nil {
		return false, fmt.Errorf("delete like failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *LikeRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Like{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count likes failed: %w", err)
	}
	return count, nil
}

func (r *LikeRepository) CountByMessageID(ctx context.Context, messageID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Like{}).Where("message_id = ?", messageID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count message likes failed: %w", err)
	}
	return count, nil
}

func (r *LikeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Like{}).Error; err != nil {
		return fmt.Errorf("delete likes by user failed: %w", err)
	}
	return nil
}

func (r *LikeRepository) DeleteByMessageID(ctx context.Context, messageID uint) error {
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Delete(&model.Like{}).Error; err != nil {
		return fmt.Errorf("delete likes by message failed: %w", err)
	}
	return nil
}

// DeleteByMessageIDs removes likes on any of the given messages.
func (r *LikeRepository) DeleteByMessageIDs(ctx context.Context, messageIDs []uint) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("message_id IN ?", messageIDs).Delete(&model.Like{}).Error; err != nil {
		return fmt.Errorf("delete likes by messages failed: %w", err)
	}
	return nil
}
