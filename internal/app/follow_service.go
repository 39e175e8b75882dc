package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"warbler/internal/model"
	"warbler/internal/repository"
)

type FollowService struct {
	store *repository.Store
	notifier
}

func NewFollowService(store *repository.Store, publisher EventPublisher, log logrus.FieldLogger) *FollowService {
	return &FollowService{
		store:    store,
		notifier: newNotifier(publisher, log),
	}
}

// Follow creates the edge followerID -> followedID.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		for _, id := range []uint{followerID, followedID} {
			exists, err := tx.Users.Exists(ctx, id)
			if err != nil {
				return err
			}
			if !exists {
				return userNotFound(id)
			}
		}

		exists, err := tx.Follows.Exists(ctx, followerID, followedID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEdge
		}
		return tx.Follows.Create(ctx, &model.Follow{FollowerID: followerID, FollowedID: followedID})
	})
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateEdge
		}
		if isForeignKeyViolation(err) {
			if missing := missingUser(ctx, s.store, followerID, followedID); missing != nil {
				return missing
			}
			return &NotFoundError{Entity: "user"}
		}
		return err
	}

	s.emit(ctx, model.EventFollowCreated, followerID, followedID)
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	var removed bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		removed, err = tx.Follows.Delete(ctx, followerID, followedID)
		return err
	})
	if err != nil {
		return err
	}
	if !removed {
		return &NotFoundError{Entity: "follow"}
	}

	s.emit(ctx, model.EventFollowDeleted, followerID, followedID)
	return nil
}

// IsFollowing reports whether the edge a -> b exists.
func (s *FollowService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.store.Follows.Exists(ctx, a, b)
}

// IsFollowedBy reports whether b follows a.
func (s *FollowService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.IsFollowing(ctx, b, a)
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]model.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows.ListFollowers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]model.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows.ListFollowing(ctx, userID)
}

func (s *FollowService) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.store.Users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return userNotFound(userID)
	}
	return nil
}
