package websocket

import (
	"net/http"
	"strings"

	"connectsphere/pkg/jwt"
	"connectsphere/pkg/logger"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests into gateway connections.
type Handler struct {
	manager  *Manager
	jwt      *jwt.JWTService
	upgrader websocket.Upgrader
}

// NewHandler allowedOrigins empty or containing "*" accepts any origin.
func NewHandler(manager *Manager, jwtService *jwt.JWTService, allowedOrigins []string) *Handler {
	return &Handler{
		manager: manager,
		jwt:     jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS is the gin handler for the gateway endpoint.
func (h *Handler) ServeWS(c *gin.Context) {
	token := jwt.TokenFromRequest(c.Request)
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	// browsers refuse the handshake unless one offered subprotocol is echoed
	var respHeader http.Header
	if proto := offeredProtocol(c.GetHeader("Sec-WebSocket-Protocol")); proto != "" {
		respHeader = http.Header{"Sec-WebSocket-Protocol": []string{proto}}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		return
	}

	client := newClient(h.manager, conn, claims.Username)
	if !h.manager.register(client) {
		_ = conn.Close()
		return
	}
	logger.Info("websocket connected",
		zap.String("conn_id", client.ID), zap.String("username", client.Username), zap.String("ip", c.ClientIP()))

	go client.WritePump()
	client.ReadPump()
}

func offeredProtocol(header string) string {
	var first string
	for _, p := range strings.Split(header, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "access_token.") {
			return p
		}
		if first == "" {
			first = p
		}
	}
	return first
}
