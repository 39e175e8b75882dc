package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"warbler/internal/pkg/jwtutil"
	"warbler/internal/transport/http/response"
)

const (
	ContextUserIDKey      = "user_id"
	ContextUsernameKey    = "username"
	ContextTokenIDKey     = "token_id"
	ContextTokenExpiryKey = "token_expires_at"
)

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthJWT rejects requests without a valid, unrevoked bearer token.
func AuthJWT(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}
		if !authenticate(c, secret, revoked) {
			return
		}
		c.Next()
	}
}

// OptionalAuthJWT lets anonymous requests through but still rejects a
// malformed or revoked token when one is sent.
func OptionalAuthJWT(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if !authenticate(c, secret, revoked) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, secret string, revoked RevocationChecker) bool {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization scheme")
		c.Abort()
		return false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	claims, err := jwtutil.ParseToken(secret, token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
		c.Abort()
		return false
	}

	if revoked != nil {
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "check token failed")
			c.Abort()
			return false
		}
		if isRevoked {
			response.Error(c, http.StatusUnauthorized, response.CodeTokenRevoked, "token has been revoked")
			c.Abort()
			return false
		}
	}

	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
	c.Set(ContextTokenIDKey, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
	}
	return true
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok && userID != 0
}

// CurrentToken returns the id and expiry of the bearer token.
func CurrentToken(c *gin.Context) (string, time.Time) {
	tokenID := c.GetString(ContextTokenIDKey)
	expiresAt := c.GetTime(ContextTokenExpiryKey)
	return tokenID, expiresAt
}
