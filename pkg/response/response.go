package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response uniform JSON envelope
type Response struct {
	Code    int         `json:"code"`            // 0 on success, otherwise the HTTP status
	Message string      `json:"message"`         // human readable message
	Data    interface{} `json:"data,omitempty"`  // payload
	Error   string      `json:"error,omitempty"` // error detail, debug mode only
}

// Success 200 with payload
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 200 with payload and a custom message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// OK is the `{success: true}` acknowledgement used by mutations that return no record.
func OK(c *gin.Context) {
	Success(c, gin.H{"success": true})
}

// Error writes status as both the HTTP code and the envelope code.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Code:    status,
		Message: message,
	})
}

// ErrorWithDetails attaches err to the envelope in debug mode
func ErrorWithDetails(c *gin.Context, status int, message string, err error) {
	resp := Response{
		Code:    status,
		Message: message,
	}

	if gin.Mode() == gin.DebugMode && err != nil {
		resp.Error = err.Error()
	}

	c.AbortWithStatusJSON(status, resp)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError never exposes the cause; callers log it.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
