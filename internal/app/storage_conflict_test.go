package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSignupLosingUniqueIndexReturnsDuplicateKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.interceptWrite(t, "users", false, func(tx *gorm.DB) {
		insertUser(t, tx, "racer", "winner@example.com")
	})

	user, err := f.services.Auth.Signup(ctx, SignupInput{
		Username: "racer",
		Email:    "loser@example.com",
		Password: testPassword,
	})
	require.Error(t, err)
	assert.Nil(t, user)
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Empty(t, f.publisher.types())

	stored, err := f.store.Users.GetByEmail(ctx, "loser@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUpdateProfileLosingUniqueIndexReturnsDuplicateKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	f.interceptWrite(t, "users", true, func(tx *gorm.DB) {
		insertUser(t, tx, "carol", "carol@example.com")
	})

	_, err := f.services.Users.UpdateProfile(ctx, alice.ID, ProfileUpdate{Username: strPtr("carol")}, testPassword)
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)

	stored, err := f.store.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
}

func TestFollowLosingPrimaryKeyReturnsDuplicateEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")
	f.interceptWrite(t, "follows", false, func(tx *gorm.DB) {
		require.NoError(t, tx.Exec(
			"INSERT INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)", a.ID, b.ID,
		).Error)
	})

	err := f.services.Follows.Follow(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
}

func TestLikeLosingPrimaryKeyReturnsDuplicateEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "author")
	fan := f.signup(t, "fan")
	message := f.post(t, author, "hello")
	f.interceptWrite(t, "likes", false, func(tx *gorm.DB) {
		require.NoError(t, tx.Exec(
			"INSERT INTO likes (user_id, message_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)", fan.ID, message.ID,
		).Error)
	})

	liked, err := f.services.Likes.ToggleLike(ctx, fan.ID, message.ID)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
	assert.False(t, liked)
}

func TestFollowOfUserDeletedMidWriteReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")
	f.interceptWrite(t, "follows", false, func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("DELETE FROM users WHERE id = ?", b.ID).Error)
	})

	err := f.services.Follows.Follow(ctx, a.ID, b.ID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Entity)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostByAuthorDeletedMidWriteReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "author")
	f.interceptWrite(t, "messages", false, func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("DELETE FROM users WHERE id = ?", author.ID).Error)
	})

	message, err := f.services.Messages.Post(ctx, author.ID, "hello")
	assert.Nil(t, message)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Entity)
	assert.Equal(t, author.ID, notFound.ID)
}

func TestLikeOfMessageDeletedMidWriteReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "author")
	fan := f.signup(t, "fan")
	message := f.post(t, author, "hello")
	f.interceptWrite(t, "likes", false, func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("DELETE FROM messages WHERE id = ?", message.ID).Error)
	})

	liked, err := f.services.Likes.ToggleLike(ctx, fan.ID, message.ID)
	assert.False(t, liked)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, f.publisher.types(), 3)
}

func TestMissingUserReportsFirstAbsentID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")

	require.NoError(t, missingUser(ctx, f.store, alice.ID))

	err := missingUser(ctx, f.store, alice.ID, 999)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(999), notFound.ID)
}
