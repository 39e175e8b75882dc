package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warbler/internal/app"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/transport/http/response"
)

// writeError maps service errors onto the response envelope. Anything
// unrecognised is attached to the context for the request logger and
// reported as fallback.
func writeError(c *gin.Context, err error, fallback string) {
	var (
		validationErr *app.ValidationError
		duplicateErr  *app.DuplicateKeyError
		notFoundErr   *app.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, validationErr.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrSelfFollow):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeSelfFollow, err.Error())
	case errors.Is(err, app.ErrSelfLike):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeSelfLike, err.Error())
	case errors.As(err, &duplicateErr):
		code := response.CodeConflict
		switch duplicateErr.Field {
		case "username":
			code = response.CodeUsernameExists
		case "email":
			code = response.CodeEmailExists
		}
		response.Error(c, http.StatusConflict, code, duplicateErr.Error())
	case errors.Is(err, app.ErrDuplicateEdge):
		response.Error(c, http.StatusConflict, response.CodeEdgeExists, err.Error())
	case errors.As(err, &notFoundErr):
		code := response.CodeNotFound
		switch notFoundErr.Entity {
		case "user":
			code = response.CodeUserNotFound
		case "message":
			code = response.CodeMessageNotFound
		}
		response.Error(c, http.StatusNotFound, code, notFoundErr.Error())
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrInvalidPassword):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidPassword, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return 0, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
