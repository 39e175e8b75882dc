package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"warbler/internal/app"
	"warbler/internal/monitoring"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ImageURL string `json:"image_url"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), app.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(c, err, "signup failed")
		return
	}
	monitoring.SignupSuccess.Inc()

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err, "login after signup failed")
		return
	}

	response.Created(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCredential):
			monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, app.ErrInvalidInput):
			monitoring.LoginFailure.WithLabelValues("invalid_input").Inc()
		default:
			monitoring.LoginFailure.WithLabelValues("internal").Inc()
		}
		writeError(c, err, "login failed")
		return
	}
	monitoring.LoginSuccess.Inc()

	response.OK(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, expiresAt := middleware.CurrentToken(c)
	if err := h.authService.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		writeError(c, err, "logout failed")
		return
	}
	response.OK(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		var notFound *app.NotFoundError
		if errors.As(err, &notFound) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
			return
		}
		writeError(c, err, "fetch current user failed")
		return
	}
	response.OK(c, user)
}
