package handler

import (
	"connectsphere/internal/service"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	service *service.CallService
}

func NewCallHandler(s *service.CallService) *CallHandler {
	return &CallHandler{service: s}
}

// List GET /api/call-history, seen from the caller's side
func (h *CallHandler) List(c *gin.Context) {
	username, ok := owner(c, c.Query("username"))
	if !ok {
		return
	}
	calls, err := h.service.History(c.Request.Context(), username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, calls)
}

// Create POST /api/call-history; the caller must take part in the call.
func (h *CallHandler) Create(c *gin.Context) {
	var in service.CallInput
	if !bind(c, &in) {
		return
	}
	me := jwt.GetUsername(c)
	if in.CallerUsername == "" {
		in.CallerUsername = me
	}
	if in.CallerUsername != me && in.ReceiverUsername != me {
		response.Forbidden(c, "not a participant of this call")
		return
	}
	call, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, call.ViewFor(me))
}
