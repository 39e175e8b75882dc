package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcreteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.signup(t, "u1")
	u2 := f.signup(t, "u2")
	u3 := f.signup(t, "u3")

	require.NoError(t, f.services.Follows.Follow(ctx, u1.ID, u2.ID))
	m1 := f.post(t, u2, "hello")
	m2 := f.post(t, u2, "world")
	m3 := f.post(t, u3, "elsewhere")

	feed, err := f.services.Feed.HomeFeed(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{m2.ID, m1.ID}, messageIDs(feed))
	assert.NotContains(t, messageIDs(feed), m3.ID)

	liked, err := f.services.Likes.ToggleLike(ctx, u1.ID, m1.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = f.services.Likes.ToggleLike(ctx, u1.ID, m1.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = f.services.Likes.ToggleLike(ctx, u2.ID, m1.ID)
	assert.ErrorIs(t, err, ErrSelfLike)
}

func TestHomeFeedIsOwnAndFollowedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.signup(t, "viewer")
	followed := f.signup(t, "followed")
	stranger := f.signup(t, "stranger")
	follower := f.signup(t, "follower")

	require.NoError(t, f.services.Follows.Follow(ctx, viewer.ID, followed.ID))
	require.NoError(t, f.services.Follows.Follow(ctx, follower.ID, viewer.ID))

	own := f.post(t, viewer, "own")
	theirs := f.post(t, followed, "theirs")
	f.post(t, stranger, "stranger")
	f.post(t, follower, "follower")
	ownLater := f.post(t, viewer, "own later")

	feed, err := f.services.Feed.HomeFeed(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{ownLater.ID, theirs.ID, own.ID}, messageIDs(feed))
	for _, m := range feed {
		require.NotNil(t, m.Author)
		assert.Contains(t, []uint{viewer.ID, followed.ID}, m.Author.ID)
	}

	require.NoError(t, f.services.Follows.Unfollow(ctx, viewer.ID, followed.ID))
	feed, err = f.services.Feed.HomeFeed(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{ownLater.ID, own.ID}, messageIDs(feed))
}

func TestHomeFeedIsCapped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.signup(t, "viewer")

	for i := 0; i < HomeFeedLimit+5; i++ {
		f.post(t, viewer, fmt.Sprintf("post %d", i))
	}

	feed, err := f.services.Feed.HomeFeed(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed, HomeFeedLimit)
	assert.Equal(t, fmt.Sprintf("post %d", HomeFeedLimit+4), feed[0].Text)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp))
	}
}

func TestHomeFeedRejectsAnonymousViewer(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Feed.HomeFeed(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPublicTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")
	first := f.post(t, a, "first")
	second := f.post(t, b, "second")

	messages, err := f.services.Feed.PublicTimeline(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, messageIDs(messages))

	messages, err = f.services.Feed.PublicTimeline(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, messageIDs(messages))
}
