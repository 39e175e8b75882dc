package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/internal/model"
)

func TestFollowIsAsymmetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")

	require.NoError(t, f.services.Follows.Follow(ctx, a.ID, b.ID))

	following, err := f.services.Follows.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followedBy, err := f.services.Follows.IsFollowedBy(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, followedBy)

	reverse, err := f.services.Follows.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	assert.Equal(t, []model.EventType{
		model.EventUserSignedUp, model.EventUserSignedUp, model.EventFollowCreated,
	}, f.publisher.types())
}

func TestFollowRejectsSelfAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")

	assert.ErrorIs(t, f.services.Follows.Follow(ctx, a.ID, a.ID), ErrSelfFollow)

	require.NoError(t, f.services.Follows.Follow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, f.services.Follows.Follow(ctx, a.ID, b.ID), ErrDuplicateEdge)

	followers, err := f.services.Follows.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 1)
}

func TestFollowRequiresBothUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")

	err := f.services.Follows.Follow(ctx, a.ID, 999)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(999), notFound.ID)

	assert.ErrorIs(t, f.services.Follows.Follow(ctx, 998, a.ID), ErrNotFound)
}

func TestUnfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")

	err := f.services.Follows.Unfollow(ctx, a.ID, b.ID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "follow", notFound.Entity)

	require.NoError(t, f.services.Follows.Follow(ctx, a.ID, b.ID))
	require.NoError(t, f.services.Follows.Unfollow(ctx, a.ID, b.ID))

	following, err := f.services.Follows.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
	assert.Contains(t, f.publisher.types(), model.EventFollowDeleted)
}

func TestFollowersAndFollowingAreOrderedByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")
	c := f.signup(t, "c")

	require.NoError(t, f.services.Follows.Follow(ctx, c.ID, a.ID))
	require.NoError(t, f.services.Follows.Follow(ctx, b.ID, a.ID))
	require.NoError(t, f.services.Follows.Follow(ctx, a.ID, c.ID))
	require.NoError(t, f.services.Follows.Follow(ctx, a.ID, b.ID))

	followers, err := f.services.Follows.Followers(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, userIDs(followers))

	following, err := f.services.Follows.Following(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, userIDs(following))

	_, err = f.services.Follows.Followers(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.services.Follows.Following(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
