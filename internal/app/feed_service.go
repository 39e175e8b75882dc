package app

import (
	"context"

	"warbler/internal/model"
	"warbler/internal/repository"
)

// HomeFeedLimit caps the number of messages in a home feed.
const HomeFeedLimit = 100

type FeedService struct {
	store *repository.Store
}

func NewFeedService(store *repository.Store) *FeedService {
	return &FeedService{store: store}
}

// HomeFeed returns the newest messages written by viewerID or by users
// viewerID follows. Anonymous viewers never reach this call.
func (s *FeedService) HomeFeed(ctx context.Context, viewerID uint) ([]model.Message, error) {
	if viewerID == 0 {
		return nil, &ValidationError{Field: "viewer_id", Message: "is required"}
	}
	return s.store.Messages.ListForFeed(ctx, viewerID, HomeFeedLimit)
}

// PublicTimeline returns the newest messages from all users.
func (s *FeedService) PublicTimeline(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > HomeFeedLimit {
		limit = HomeFeedLimit
	}
	return s.store.Messages.ListLatest(ctx, limit)
}
