package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"warbler/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrDuplicateEdge     = errors.New("edge already exists")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrSelfFollow        = errors.New("users cannot follow themselves")
	ErrSelfLike          = errors.New("users cannot like their own messages")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// DuplicateKeyError reports a uniqueness violation on a user attribute.
// Field is empty when the storage engine rejected the row without saying
// which constraint fired.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return "duplicate key"
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func userNotFound(id uint) error {
	return &NotFoundError{Entity: "user", ID: id}
}

func messageNotFound(id uint) error {
	return &NotFoundError{Entity: "message", ID: id}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// isForeignKeyViolation reports an insert whose referenced row was deleted
// by a concurrent transaction after the existence checks passed.
func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

// missingUser returns a *NotFoundError for the first of ids that no longer
// exists, or nil when all of them do.
func missingUser(ctx context.Context, store *repository.Store, ids ...uint) error {
	for _, id := range ids {
		exists, err := store.Users.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return userNotFound(id)
		}
	}
	return nil
}
