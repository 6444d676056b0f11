package handler

import (
	"connectsphere/internal/service"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service *service.EventService
}

func NewEventHandler(s *service.EventService) *EventHandler {
	return &EventHandler{service: s}
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, events)
}

func (h *EventHandler) Create(c *gin.Context) {
	var in service.EventInput
	if !bind(c, &in) {
		return
	}
	if in.CreatedBy == "" {
		in.CreatedBy = jwt.GetUsername(c)
	}
	ev, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ev)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in service.EventInput
	if !bind(c, &in) {
		return
	}
	ev, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ev)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}
