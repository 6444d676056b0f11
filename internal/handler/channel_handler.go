package handler

import (
	"connectsphere/internal/model"
	"connectsphere/internal/service"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	service *service.ChannelService
}

func NewChannelHandler(s *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: s}
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, channels)
}

// Create makes the caller the channel admin.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"isPrivate"`
	}
	if !bind(c, &req) {
		return
	}
	ch, err := h.service.Create(c.Request.Context(), service.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   jwt.GetUsername(c),
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ch)
}

// Rename PUT /api/channels/:name {newName}
func (h *ChannelHandler) Rename(c *gin.Context) {
	var req struct {
		NewName string `json:"newName" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.service.Rename(c.Request.Context(), c.Param("name"), req.NewName); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}

func (h *ChannelHandler) Members(c *gin.Context) {
	members, err := h.service.Members(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, members)
}

func (h *ChannelHandler) AddMember(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Role     string `json:"role"`
	}
	if !bind(c, &req) {
		return
	}
	if req.Role == "" {
		req.Role = model.RoleMember
	}
	member, err := h.service.AddMember(c.Request.Context(), c.Param("name"), req.Username, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, member)
}

func (h *ChannelHandler) RemoveMember(c *gin.Context) {
	if err := h.service.RemoveMember(c.Request.Context(), c.Param("name"), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}
