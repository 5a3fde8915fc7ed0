package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/internal/ai"
	"taskflow/internal/config"
	"taskflow/internal/db"
	httpServer "taskflow/internal/http"
	"taskflow/internal/http/handlers"
	"taskflow/internal/http/middleware"
	"taskflow/internal/logger"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/telemetry"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.SessionTTL)

	shutdownTracing, err := telemetry.InitTracing(cfg.TraceExporter, "taskflow", cfg.AppVersion)
	if err != nil {
		logger.Fatal("tracing setup failed", "error", err)
	}

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := db.Migrate(migrateCtx, dbPool); err != nil {
		logger.Fatal("migrations failed", "error", err)
	}
	cancelMigrate()

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}
	middleware.InitRedisRateLimiter(rdb)

	// repositories
	tasks := repository.NewTaskCache(repository.NewTaskRepository(dbPool), rdb, cfg.BoardCacheTTL)
	columns := repository.NewColumnRepository(dbPool)
	users := repository.NewUserRepository(dbPool)
	tokens := repository.NewTokenRepository(dbPool)
	activityRepo := repository.NewActivityRepository(dbPool)

	// services
	hub := ws.NewHub()
	activity := service.NewActivityService(activityRepo)
	board := service.NewBoardService(tasks, columns, activity, hub)
	auth := service.NewAuthService(users, tokens, service.NewRedisRevocations(rdb))
	assistant := ai.NewAssistant(ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.AITimeout))
	if !assistant.Available() {
		logger.Info("OPENAI_API_KEY not set, AI features disabled")
	}

	var redisHealth handlers.Pinger
	if rdb != nil {
		redisHealth = db.RedisPinger{Client: rdb}
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for a frontend served from another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: handlers.NewHandler(board, auth, activity, assistant, cfg.CookieSecure),
		Health:  handlers.NewHealthHandler(dbPool, redisHealth, cfg.AppVersion),
		Auth:    auth,
		Hub:     hub,
	}, httpServer.LimitsFromConfig(cfg), cfg.FrontendDir, cfg.AllowedOrigin)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go purgeExpiredTokens(ctx, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}

	logger.Info("server exited")
}

func purgeExpiredTokens(ctx context.Context, tokens *repository.TokenRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired tokens failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired auth tokens purged", "count", n)
			}
		}
	}
}
