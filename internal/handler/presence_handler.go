package handler

import (
	"context"

	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// OnlineLister reports usernames with a live gateway connection.
type OnlineLister interface {
	OnlineUsers(ctx context.Context) ([]string, error)
}

type PresenceHandler struct {
	presence OnlineLister
}

func NewPresenceHandler(p OnlineLister) *PresenceHandler {
	return &PresenceHandler{presence: p}
}

func (h *PresenceHandler) Online(c *gin.Context) {
	users, err := h.presence.OnlineUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"users": users})
}
