package handler

import (
	"github.com/gin-gonic/gin"

	"warbler/internal/app"
	"warbler/internal/monitoring"
	"warbler/internal/transport/http/response"
)

type FollowHandler struct {
	follows *app.FollowService
}

func NewFollowHandler(follows *app.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	followerID, ok := requireUserID(c)
	if !ok {
		return
	}
	followedID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.follows.Follow(c.Request.Context(), followerID, followedID); err != nil {
		writeError(c, err, "follow failed")
		return
	}
	monitoring.FollowChanges.WithLabelValues("follow").Inc()
	response.OK(c, gin.H{"following": true})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	followerID, ok := requireUserID(c)
	if !ok {
		return
	}
	followedID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), followerID, followedID); err != nil {
		writeError(c, err, "unfollow failed")
		return
	}
	monitoring.FollowChanges.WithLabelValues("unfollow").Inc()
	response.OK(c, gin.H{"following": false})
}
