package handler

import (
	"context"
	"net/http"
	"time"

	"connectsphere/config"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/limiter"
	"connectsphere/pkg/logger"
	"connectsphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers groups everything the router mounts.
type Handlers struct {
	Users      *UserHandler
	Channels   *ChannelHandler
	Messages   *MessageHandler
	Events     *EventHandler
	Activities *ActivityHandler
	SpeedDial  *SpeedDialHandler
	Calls      *CallHandler
	Settings   *SettingsHandler
	Upload     *UploadHandler
	Presence   *PresenceHandler
	Gateway    gin.HandlerFunc
	Health     map[string]HealthCheck
}

// NewRouter builds the gin engine: REST under /api, the gateway on /ws,
// local uploads under the configured prefix.
func NewRouter(cfg *config.Config, jwtService *jwt.JWTService, rl *limiter.IPRateLimiter, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())
	router.Use(CORS(cfg.Server.AllowedOrigins))

	router.GET("/health", health(h.Health))

	if cfg.Upload.Backend == "" || cfg.Upload.Backend == "local" {
		router.Static(cfg.Upload.URLPrefix, cfg.Upload.Dir)
	}

	if h.Gateway != nil {
		router.GET("/ws", rl.Middleware(), h.Gateway)
	}

	api := router.Group("/api")
	api.Use(rl.Middleware())
	api.POST("/register", h.Users.Register)
	api.POST("/login", h.Users.Login)

	auth := api.Group("")
	auth.Use(jwtService.AuthMiddleware())
	{
		auth.GET("/users", h.Users.List)
		auth.GET("/users/:username", h.Users.Get)
		auth.PUT("/users/:username", h.Users.Update)
		auth.PUT("/users/:username/status", h.Users.SetStatus)

		auth.POST("/verify/send-code", h.Users.SendCode)
		auth.POST("/verify/confirm-code", h.Users.ConfirmCode)

		auth.GET("/messages/:room", h.Messages.History)
		auth.DELETE("/messages/:room", h.Messages.Clear)

		auth.GET("/channels", h.Channels.List)
		auth.POST("/channels", h.Channels.Create)
		auth.PUT("/channels/:name", h.Channels.Rename)
		auth.DELETE("/channels/:name", h.Channels.Delete)
		auth.GET("/channels/:name/members", h.Channels.Members)
		auth.POST("/channels/:name/members", h.Channels.AddMember)
		auth.DELETE("/channels/:name/members/:username", h.Channels.RemoveMember)

		auth.GET("/events", h.Events.List)
		auth.POST("/events", h.Events.Create)
		auth.PUT("/events/:id", h.Events.Update)
		auth.DELETE("/events/:id", h.Events.Delete)

		auth.GET("/activities", h.Activities.List)
		auth.POST("/activities", h.Activities.Create)
		auth.PUT("/activities/read-all", h.Activities.MarkAllRead)
		auth.PUT("/activities/:id/read", h.Activities.MarkRead)

		auth.GET("/speed-dial", h.SpeedDial.List)
		auth.POST("/speed-dial", h.SpeedDial.Add)
		auth.DELETE("/speed-dial/:id", h.SpeedDial.Remove)

		auth.GET("/call-history", h.Calls.List)
		auth.POST("/call-history", h.Calls.Create)

		auth.GET("/settings/:username", h.Settings.Get)
		auth.PUT("/settings/:username", h.Settings.Update)

		auth.POST("/upload", h.Upload.Upload)
		auth.GET("/presence", h.Presence.Online)
	}

	return router
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = "down"
				status = "degraded"
				continue
			}
			components[name] = "up"
		}

		body := gin.H{
			"status":     status,
			"components": components,
			"time":       time.Now().Format(time.RFC3339),
		}
		if status != "ok" {
			c.JSON(http.StatusServiceUnavailable, response.Response{Code: http.StatusServiceUnavailable, Message: status, Data: body})
			return
		}
		response.Success(c, body)
	}
}
