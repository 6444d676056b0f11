package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectsphere/config"
	"connectsphere/internal/handler"
	"connectsphere/internal/model"
	"connectsphere/internal/presence"
	"connectsphere/internal/repository"
	"connectsphere/internal/service"
	dbPkg "connectsphere/pkg/db"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/limiter"
	"connectsphere/pkg/logger"
	"connectsphere/pkg/password"
	redisPkg "connectsphere/pkg/redis"
	"connectsphere/pkg/storage"
	"connectsphere/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	log.Info("connectsphere starting",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("upload_backend", cfg.Upload.Backend),
		zap.String("log_level", cfg.Log.Level),
	)

	orm, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("close database failed", zap.Error(err))
		}
	}()
	if err := dbPkg.AutoMigrate(model.All()...); err != nil {
		log.Fatal("auto migrate failed", zap.Error(err))
	}
	log.Info("database ready")

	ctx := context.Background()
	health := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return dbPkg.HealthCheck() },
	}

	var tracker presence.Tracker = presence.NewMemoryTracker()
	if cfg.Redis.Enabled {
		rdb, err := redisPkg.InitRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer func() {
			if err := redisPkg.Close(); err != nil {
				log.Error("close redis failed", zap.Error(err))
			}
		}()
		tracker = presence.NewRedisTracker(rdb, cfg.Redis.PresenceTTL)
		health["redis"] = redisPkg.HealthCheck
		log.Info("presence backed by redis")
	}

	store, err := storage.New(ctx, cfg.Upload)
	if err != nil {
		log.Fatal("upload storage init failed", zap.Error(err))
	}

	jwtSvc := jwt.NewJWTService(cfg.JWT)

	userRepo := repository.NewUserRepository(orm)
	channelRepo := repository.NewChannelRepository(orm)
	memberRepo := repository.NewMemberRepository(orm)
	settingsRepo := repository.NewSettingsRepository(orm)
	activityRepo := repository.NewActivityRepository(orm)

	userSvc := service.NewUserService(userRepo, channelRepo, memberRepo, settingsRepo, jwtSvc, password.NewHasher(0))
	messageSvc := service.NewMessageService(repository.NewMessageRepository(orm), activityRepo)
	callSvc := service.NewCallService(repository.NewCallRepository(orm))

	manager := websocket.NewManager(cfg.WebSocket, tracker, messageSvc, userSvc, callSvc)

	rl := limiter.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	defer rl.Stop()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(cfg, jwtSvc, rl, handler.Handlers{
		Users:      handler.NewUserHandler(userSvc, manager),
		Channels:   handler.NewChannelHandler(service.NewChannelService(channelRepo, memberRepo, userRepo)),
		Messages:   handler.NewMessageHandler(messageSvc, cfg.WebSocket.HistoryLimit),
		Events:     handler.NewEventHandler(service.NewEventService(repository.NewEventRepository(orm))),
		Activities: handler.NewActivityHandler(service.NewActivityService(activityRepo)),
		SpeedDial:  handler.NewSpeedDialHandler(service.NewSpeedDialService(userRepo, repository.NewSpeedDialRepository(orm))),
		Calls:      handler.NewCallHandler(callSvc),
		Settings:   handler.NewSettingsHandler(service.NewSettingsService(settingsRepo)),
		Upload:     handler.NewUploadHandler(store, cfg.Upload.MaxSize),
		Presence:   handler.NewPresenceHandler(manager),
		Gateway:    websocket.NewHandler(manager, jwtSvc, cfg.Server.AllowedOrigins).ServeWS,
		Health:     health,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if err := manager.Close(shutdownCtx); err != nil {
		log.Warn("websocket shutdown incomplete", zap.Error(err), zap.Int("connections", manager.ConnectionCount()))
	}

	log.Info("server stopped")
}
