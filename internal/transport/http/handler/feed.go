package handler

import (
	"github.com/gin-gonic/gin"

	"warbler/internal/app"
	"warbler/internal/model"
	"warbler/internal/monitoring"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/transport/http/response"
)

type FeedHandler struct {
	feed *app.FeedService
}

func NewFeedHandler(feed *app.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Home serves the viewer's home feed. Anonymous viewers get an empty list.
func (h *FeedHandler) Home(c *gin.Context) {
	viewerID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.OK(c, []model.Message{})
		return
	}

	var messages []model.Message
	err := monitoring.ObserveFeed(func() error {
		var err error
		messages, err = h.feed.HomeFeed(c.Request.Context(), viewerID)
		return err
	})
	if err != nil {
		writeError(c, err, "assemble feed failed")
		return
	}
	response.OK(c, nonNilMessages(messages))
}

func (h *FeedHandler) Public(c *gin.Context) {
	messages, err := h.feed.PublicTimeline(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err, "fetch timeline failed")
		return
	}
	response.OK(c, nonNilMessages(messages))
}
