package app

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/model"
	"warbler/internal/repository"
)

type UserService struct {
	store *repository.Store
	notifier
}

// ProfileUpdate lists the editable profile fields. Nil pointers leave the
// stored value unchanged; empty image URLs reset to the defaults.
type ProfileUpdate struct {
	Username       *string `json:"username" validate:"omitempty,max=64"`
	Email          *string `json:"email" validate:"omitempty,email,max=128"`
	ImageURL       *string `json:"image_url" validate:"omitempty,max=255"`
	HeaderImageURL *string `json:"header_image_url" validate:"omitempty,max=255"`
	Bio            *string `json:"bio" validate:"omitempty,max=1000"`
	Location       *string `json:"location" validate:"omitempty,max=128"`
}

func NewUserService(store *repository.Store, publisher EventPublisher, log logrus.FieldLogger) *UserService {
	return &UserService{
		store:    store,
		notifier: newNotifier(publisher, log),
	}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound(id)
	}
	return user, nil
}

// Search lists every user when query is empty, otherwise the users whose
// username contains query (case-sensitive).
func (s *UserService) Search(ctx context.Context, query string) ([]model.User, error) {
	return s.store.Users.Search(ctx, query)
}

// UpdateProfile re-verifies currentPassword and applies update in the same
// transaction, so nothing is written unless the password matches.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate, currentPassword string) (*model.User, error) {
	trimPtr(update.Username)
	trimPtr(update.Email)
	trimPtr(update.ImageURL)
	trimPtr(update.HeaderImageURL)
	if update.Username != nil && *update.Username == "" {
		return nil, &ValidationError{Field: "username", Message: "is required"}
	}
	if update.Email != nil && *update.Email == "" {
		return nil, &ValidationError{Field: "email", Message: "is required"}
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	var updated *model.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return userNotFound(userID)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
			return ErrInvalidPassword
		}

		applyProfileUpdate(user, update)
		if err := ensureUnique(ctx, tx, user.ID, user.Username, user.Email); err != nil {
			return err
		}
		if err := tx.Users.Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, &DuplicateKeyError{}
		}
		return nil, err
	}

	s.emit(ctx, model.EventUserUpdated, updated.ID, updated.ID)
	return updated, nil
}

// DeleteUser removes the user together with their messages, the likes on
// those messages, the likes they gave and every follow edge touching them.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return userNotFound(userID)
		}

		if err := tx.Likes.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		messageIDs, err := tx.Messages.IDsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.Likes.DeleteByMessageIDs(ctx, messageIDs); err != nil {
			return err
		}
		if err := tx.Messages.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Follows.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		_, err = tx.Users.DeleteByID(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	s.log.WithField("user_id", userID).Info("user deleted")
	s.emit(ctx, model.EventUserDeleted, userID, userID)
	return nil
}

// Stats returns the counters shown on a profile page.
func (s *UserService) Stats(ctx context.Context, userID uint) (*model.UserStats, error) {
	exists, err := s.store.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, userNotFound(userID)
	}

	var stats model.UserStats
	if stats.Messages, err = s.store.Messages.CountByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Followers, err = s.store.Follows.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Following, err = s.store.Follows.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Likes, err = s.store.Likes.CountByUserID(ctx, userID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func applyProfileUpdate(user *model.User, update ProfileUpdate) {
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.ImageURL != nil {
		user.ImageURL = *update.ImageURL
	}
	if update.HeaderImageURL != nil {
		user.HeaderImageURL = *update.HeaderImageURL
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	user.ApplyProfileDefaults()
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
