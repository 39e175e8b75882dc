package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeSelfFollow         = 40003
	CodeSelfLike           = 40004
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeInvalidPassword    = 40102
	CodeTokenRevoked       = 40103
	CodeForbidden          = 40300
	CodeNotFound           = 40400
	CodeUserNotFound       = 40401
	CodeMessageNotFound    = 40402
	CodeConflict           = 40900
	CodeEdgeExists         = 40901
	CodeInternalServer     = 50000
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, APIResponse{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
