package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"warbler/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).Preload("Author").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query message by id failed: %w", err)
	}
	return &message, nil
}

func (r *MessageRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages by user failed: %w", err)
	}
	return messages, nil
}

// ListForFeed returns the newest messages written by viewerID or by anyone
// viewerID follows. Ties on timestamp are broken by id so paging is stable.
func (r *MessageRepository) ListForFeed(ctx context.Context, viewerID uint, limit int) ([]model.Message, error) {
	followed := r.db.Model(&model.Follow{}).Select("followed_id").Where("follower_id = ?", viewerID)

	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ? OR user_id IN (?)", viewerID, followed).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list feed messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) ListLatest(ctx context.Context, limit int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list latest messages failed: %w", err)
	}
	return messages, nil
}

// ListLikedByUserID returns the messages userID currently likes, newest first.
func (r *MessageRepository) ListLikedByUserID(ctx context.Context, userID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("messages.timestamp DESC").Order("messages.id DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list liked messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) IDsByUserID(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Message{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list message ids by user failed: %w", err)
	}
	return ids, nil
}

func (r *MessageRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Message{}, id).Error; err != nil {
		return fmt.Errorf("delete message failed: %w", err)
	}
	return nil
}

// DeleteByUserID removes every message owned by userID (caller must delete likes first).
func (r *MessageRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by user failed: %w", err)
	}
	return nil
}
