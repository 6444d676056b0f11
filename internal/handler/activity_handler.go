package handler

import (
	"connectsphere/internal/model"
	"connectsphere/internal/service"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	service *service.ActivityService
}

func NewActivityHandler(s *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: s}
}

// List GET /api/activities, the caller's feed newest first
func (h *ActivityHandler) List(c *gin.Context) {
	username, ok := owner(c, c.Query("username"))
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

func (h *ActivityHandler) Create(c *gin.Context) {
	var req struct {
		Type       string `json:"type" binding:"required"`
		TargetUser string `json:"targetUser" binding:"required"`
		Channel    string `json:"channel"`
		Message    string `json:"message"`
	}
	if !bind(c, &req) {
		return
	}
	a := &model.Activity{
		Type:       req.Type,
		TargetUser: req.TargetUser,
		FromUser:   jwt.GetUsername(c),
		Channel:    req.Channel,
		Message:    req.Message,
	}
	if err := h.service.Create(c.Request.Context(), a); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, a)
}

// MarkRead PUT /api/activities/:id/read
func (h *ActivityHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), jwt.GetUsername(c), id); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}

// MarkAllRead PUT /api/activities/read-all
func (h *ActivityHandler) MarkAllRead(c *gin.Context) {
	username, ok := owner(c, c.Query("username"))
	if !ok {
		return
	}
	n, err := h.service.MarkAllRead(c.Request.Context(), username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "updated": n})
}
