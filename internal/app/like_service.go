package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"warbler/internal/model"
	"warbler/internal/repository"
)

type LikeService struct {
	store *repository.Store
	notifier
}

func NewLikeService(store *repository.Store, publisher EventPublisher, log logrus.FieldLogger) *LikeService {
	return &LikeService{
		store:    store,
		notifier: newNotifier(publisher, log),
	}
}

// ToggleLike flips the like edge between userID and messageID and reports
// whether the message is liked afterwards. Liking one's own message fails
// with ErrSelfLike and writes nothing; unliking never needs that check
// because such an edge cannot exist.
func (s *LikeService) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	var liked bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return userNotFound(userID)
		}
		message, err := tx.Messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if message == nil {
			return messageNotFound(messageID)
		}

		removed, err := tx.Likes.Delete(ctx, userID, messageID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return nil
		}

		if message.UserID == userID {
			return ErrSelfLike
		}
		if err := tx.Likes.Create(ctx, &model.Like{UserID: userID, MessageID: messageID}); err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return false, ErrDuplicateEdge
		}
		if isForeignKeyViolation(err) {
			return false, s.missingTarget(ctx, userID, messageID)
		}
		return false, err
	}

	eventType := model.EventLikeDeleted
	if liked {
		eventType = model.EventLikeCreated
	}
	s.emit(ctx, eventType, userID, messageID)
	return liked, nil
}

func (s *LikeService) missingTarget(ctx context.Context, userID, messageID uint) error {
	message, err := s.store.Messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return messageNotFound(messageID)
	}
	if missing := missingUser(ctx, s.store, userID); missing != nil {
		return missing
	}
	return &NotFoundError{Entity: "like target"}
}

// LikedMessages returns every message userID currently likes, newest first.
func (s *LikeService) LikedMessages(ctx context.Context, userID uint) ([]model.Message, error) {
	exists, err := s.store.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, userNotFound(userID)
	}
	return s.store.Messages.ListLikedByUserID(ctx, userID)
}
