package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"warbler/internal/model"
	"warbler/internal/repository"
)

type MessageService struct {
	store *repository.Store
	notifier
}

func NewMessageService(store *repository.Store, publisher EventPublisher, log logrus.FieldLogger) *MessageService {
	return &MessageService{
		store:    store,
		notifier: newNotifier(publisher, log),
	}
}

// WithClock replaces the clock used for message timestamps.
func (s *MessageService) WithClock(now func() time.Time) *MessageService {
	s.now = now
	return s
}

// Post stores text as a new message by authorID. Text is trimmed and must
// hold between 1 and 140 characters.
func (s *MessageService) Post(ctx context.Context, authorID uint, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "is required"}
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return nil, &ValidationError{Field: "text", Message: "must be at most 140 characters"}
	}

	message := &model.Message{
		Text:      text,
		UserID:    authorID,
		Timestamp: s.now().UTC(),
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users.Exists(ctx, authorID)
		if err != nil {
			return err
		}
		if !exists {
			return userNotFound(authorID)
		}
		return tx.Messages.Create(ctx, message)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, userNotFound(authorID)
		}
		return nil, err
	}

	s.emit(ctx, model.EventMessagePosted, authorID, message.ID)
	return message, nil
}

func (s *MessageService) Get(ctx context.Context, messageID uint) (*model.Message, error) {
	message, err := s.store.Messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, messageNotFound(messageID)
	}
	return message, nil
}

// ListByUser returns the newest messages written by userID.
func (s *MessageService) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Message, error) {
	exists, err := s.store.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, userNotFound(userID)
	}
	return s.store.Messages.ListByUserID(ctx, userID, limit)
}

// Delete removes messageID and its likes. Only the author may delete.
func (s *MessageService) Delete(ctx context.Context, messageID, requesterID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		message, err := tx.Messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if message == nil {
			return messageNotFound(messageID)
		}
		if message.UserID != requesterID {
			return ErrForbidden
		}

		if err := tx.Likes.DeleteByMessageID(ctx, messageID); err != nil {
			return err
		}
		return tx.Messages.DeleteByID(ctx, messageID)
	})
	if err != nil {
		return err
	}

	s.emit(ctx, model.EventMessageDeleted, requesterID, messageID)
	return nil
}
