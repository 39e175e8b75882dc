package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one *gorm.DB handle, which is
// either the connection pool or an open transaction.
type Store struct {
	db *gorm.DB

	Users    *UserRepository
	Messages *MessageRepository
	Follows  *FollowRepository
	Likes    *LikeRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Messages: NewMessageRepository(db),
		Follows:  NewFollowRepository(db),
		Likes:    NewLikeRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// including when ctx is cancelled before commit.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}
