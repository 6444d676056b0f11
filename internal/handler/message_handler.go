package handler

import (
	"strconv"

	"connectsphere/internal/service"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxHistoryPage = 200

type MessageHandler struct {
	service      *service.MessageService
	historyLimit int
}

func NewMessageHandler(s *service.MessageService, historyLimit int) *MessageHandler {
	return &MessageHandler{service: s, historyLimit: historyLimit}
}

// History GET /api/messages/:room?limit=N, oldest first
func (h *MessageHandler) History(c *gin.Context) {
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = min(n, maxHistoryPage)
	}
	msgs, err := h.service.History(c.Request.Context(), c.Param("room"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, msgs)
}

// Clear DELETE /api/messages/:room
func (h *MessageHandler) Clear(c *gin.Context) {
	n, err := h.service.Clear(c.Request.Context(), c.Param("room"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "deleted": n})
}
