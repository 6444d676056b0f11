// Package handler exposes the services over the JSON REST API.
package handler

import (
	"net/http"
	"strconv"

	"connectsphere/pkg/errs"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/logger"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail answers with the classified status of err. Unclassified errors are
// logged and reported as a generic server error.
func fail(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("username", jwt.GetUsername(c)),
			zap.Error(err),
		)
		if gin.Mode() == gin.DebugMode {
			response.ErrorWithDetails(c, status, "server error", err)
			return
		}
		response.InternalError(c, "server error")
		return
	}
	if status == http.StatusNotFound {
		response.NotFound(c, errs.Message(err))
		return
	}
	response.Error(c, status, errs.Message(err))
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.BadRequest(c, "invalid request body")
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// owner resolves the user a personal resource belongs to. It defaults to the
// caller and refuses anyone else.
func owner(c *gin.Context, claimed string) (string, bool) {
	me := jwt.GetUsername(c)
	if claimed == "" || claimed == me {
		return me, true
	}
	response.Forbidden(c, "access to another user's data is not allowed")
	return "", false
}
