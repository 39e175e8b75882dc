package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warbler/internal/app"
	"warbler/internal/model"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/transport/http/response"
)

type UserHandler struct {
	users    *app.UserService
	follows  *app.FollowService
	messages *app.MessageService
	likes    *app.LikeService
	auth     *app.AuthService
}

type UpdateProfileRequest struct {
	app.ProfileUpdate
	Password string `json:"password"`
}

func NewUserHandler(services *app.Services) *UserHandler {
	return &UserHandler{
		users:    services.Users,
		follows:  services.Follows,
		messages: services.Messages,
		likes:    services.Likes,
		auth:     services.Auth,
	}
}

func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err, "search users failed")
		return
	}
	response.OK(c, nonNilUsers(users))
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "fetch user failed")
		return
	}

	data := gin.H{"user": user}
	if viewerID, ok := middleware.CurrentUserID(c); ok && viewerID != userID {
		following, err := h.follows.IsFollowing(c.Request.Context(), viewerID, userID)
		if err != nil {
			writeError(c, err, "fetch user failed")
			return
		}
		followedBy, err := h.follows.IsFollowedBy(c.Request.Context(), viewerID, userID)
		if err != nil {
			writeError(c, err, "fetch user failed")
			return
		}
		data["is_following"] = following
		data["is_followed_by"] = followedBy
	}
	response.OK(c, data)
}

func (h *UserHandler) Followers(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	users, err := h.follows.Followers(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list followers failed")
		return
	}
	response.OK(c, nonNilUsers(users))
}

func (h *UserHandler) Following(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	users, err := h.follows.Following(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list following failed")
		return
	}
	response.OK(c, nonNilUsers(users))
}

func (h *UserHandler) Likes(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	messages, err := h.likes.LikedMessages(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "list likes failed")
		return
	}
	response.OK(c, nonNilMessages(messages))
}

func (h *UserHandler) Messages(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	messages, err := h.messages.ListByUser(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		writeError(c, err, "list messages failed")
		return
	}
	response.OK(c, nonNilMessages(messages))
}

func (h *UserHandler) Stats(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.users.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "fetch stats failed")
		return
	}
	response.OK(c, stats)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req.ProfileUpdate, req.Password)
	if err != nil {
		writeError(c, err, "update profile failed")
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		writeError(c, err, "delete user failed")
		return
	}

	tokenID, expiresAt := middleware.CurrentToken(c)
	if err := h.auth.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		_ = c.Error(err)
	}
	response.OK(c, nil)
}

func nonNilUsers(users []model.User) []model.User {
	if users == nil {
		return []model.User{}
	}
	return users
}

func nonNilMessages(messages []model.Message) []model.Message {
	if messages == nil {
		return []model.Message{}
	}
	return messages
}
