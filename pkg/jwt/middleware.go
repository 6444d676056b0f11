package jwt

import (
	"net/http"
	"strings"

	"connectsphere/pkg/logger"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// TokenFromRequest reads the bearer token from the Authorization header, the
// token query parameter, or the Sec-WebSocket-Protocol header, in that order.
// Browsers cannot set headers on a websocket handshake, hence the fallbacks.
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	for _, proto := range strings.Split(r.Header.Get("Sec-WebSocket-Protocol"), ",") {
		proto = strings.TrimSpace(proto)
		if strings.HasPrefix(proto, "access_token.") {
			return strings.TrimPrefix(proto, "access_token.")
		}
	}
	return ""
}

// AuthMiddleware rejects requests without a valid token and stores the caller in the context.
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c.Request)
		if tokenString == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			logger.Warn("jwt rejected",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID())
		c.Set(ContextUsernameKey, claims.Username)

		c.Next()
	}
}

func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}
