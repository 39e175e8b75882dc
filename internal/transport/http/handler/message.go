package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warbler/internal/app"
	"warbler/internal/monitoring"
	"warbler/internal/transport/http/response"
)

type MessageHandler struct {
	messages *app.MessageService
	likes    *app.LikeService
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

func NewMessageHandler(messages *app.MessageService, likes *app.LikeService) *MessageHandler {
	return &MessageHandler{messages: messages, likes: likes}
}

func (h *MessageHandler) Post(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	message, err := h.messages.Post(c.Request.Context(), userID, req.Text)
	if err != nil {
		writeError(c, err, "post message failed")
		return
	}
	monitoring.MessagesPosted.Inc()
	response.Created(c, message)
}

func (h *MessageHandler) Get(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}
	message, err := h.messages.Get(c.Request.Context(), messageID)
	if err != nil {
		writeError(c, err, "fetch message failed")
		return
	}
	response.OK(c, message)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.messages.Delete(c.Request.Context(), messageID, userID); err != nil {
		writeError(c, err, "delete message failed")
		return
	}
	monitoring.MessagesDeleted.Inc()
	response.OK(c, nil)
}

func (h *MessageHandler) ToggleLike(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	liked, err := h.likes.ToggleLike(c.Request.Context(), userID, messageID)
	if err != nil {
		writeError(c, err, "toggle like failed")
		return
	}
	result := "unliked"
	if liked {
		result = "liked"
	}
	monitoring.LikeToggles.WithLabelValues(result).Inc()
	response.OK(c, gin.H{"liked": liked})
}
