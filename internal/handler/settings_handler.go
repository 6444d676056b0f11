package handler

import (
	"connectsphere/internal/service"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	service *service.SettingsService
}

func NewSettingsHandler(s *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: s}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	username, ok := owner(c, c.Param("username"))
	if !ok {
		return
	}
	settings, err := h.service.Get(c.Request.Context(), username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	username, ok := owner(c, c.Param("username"))
	if !ok {
		return
	}
	var in service.SettingsInput
	if !bind(c, &in) {
		return
	}
	settings, err := h.service.Update(c.Request.Context(), username, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, settings)
}
