package handler

import (
	"connectsphere/internal/service"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type SpeedDialHandler struct {
	service *service.SpeedDialService
}

func NewSpeedDialHandler(s *service.SpeedDialService) *SpeedDialHandler {
	return &SpeedDialHandler{service: s}
}

func (h *SpeedDialHandler) List(c *gin.Context) {
	username, ok := owner(c, c.Query("username"))
	if !ok {
		return
	}
	contacts, err := h.service.List(c.Request.Context(), username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, contacts)
}

func (h *SpeedDialHandler) Add(c *gin.Context) {
	var req struct {
		Username        string `json:"username"`
		ContactUsername string `json:"contactUsername" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	username, ok := owner(c, req.Username)
	if !ok {
		return
	}
	entry, err := h.service.Add(c.Request.Context(), username, req.ContactUsername)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *SpeedDialHandler) Remove(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	username, ok := owner(c, c.Query("username"))
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), username, id); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}
