package http

import (
	"time"

	"taskflow/internal/config"
	"taskflow/internal/http/handlers"
	"taskflow/internal/http/middleware"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from main.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Auth    middleware.Authenticator
	Hub     *ws.Hub
}

// Limits carries the rate limit settings; zero values fall back to defaults.
type Limits struct {
	API, Auth, AI                   int
	APIWindow, AuthWindow, AIWindow time.Duration
}

func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		API:        cfg.APIRateLimit,
		APIWindow:  cfg.APIRateWindow,
		Auth:       cfg.AuthRateLimit,
		AuthWindow: cfg.AuthRateWindow,
		AI:         cfg.AIRateLimit,
		AIWindow:   cfg.AIRateWindow,
	}
}

func (l Limits) withDefaults() Limits {
	if l.API <= 0 {
		l.API = 120
	}
	if l.Auth <= 0 {
		l.Auth = 10
	}
	if l.AI <= 0 {
		l.AI = 20
	}
	if l.APIWindow <= 0 {
		l.APIWindow = time.Minute
	}
	if l.AuthWindow <= 0 {
		l.AuthWindow = time.Minute
	}
	if l.AIWindow <= 0 {
		l.AIWindow = time.Minute
	}
	return l
}

func RegisterRoutes(r *gin.Engine, d Deps, limits Limits, frontendDir, allowedOrigin string) {
	limits = limits.withDefaults()
	h := d.Handler

	r.Use(middleware.RequestID(), middleware.Tracing(), middleware.Metrics())

	// Health checks and metrics (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit("api", limits.API, limits.APIWindow, middleware.ByIP))
	registerAPIRoutes(v1, h, d.Auth, limits)

	// Board event stream
	r.GET("/ws", ws.HandleWS(d.Hub, d.Auth, allowedOrigin))

	// Pages: auth callback and the static frontend behind the page guard
	guard := middleware.PageGuard(d.Auth)
	r.GET("/auth/callback", guard, h.AuthCallback)
	r.NoRoute(guard, handlers.Pages(frontendDir))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, auth middleware.Authenticator, limits Limits) {
	authRL := middleware.RedisRateLimit("auth", limits.Auth, limits.AuthWindow, middleware.ByIP)
	jwt := middleware.JWT(auth)

	// Auth
	a := api.Group("/auth")
	{
		a.POST("/signup", authRL, h.SignUp)
		a.POST("/login", authRL, h.Login)
		a.POST("/logout", h.Logout)
		a.POST("/password/forgot", authRL, h.ForgotPassword)
		a.POST("/password/reset", authRL, h.ResetPassword)
	}

	api.GET("/me", jwt, h.Me)

	// Tasks
	tasks := api.Group("/tasks", jwt)
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/move", h.MoveTask)
	}

	// Columns are shared by every board; operators add them with taskflowctl
	api.GET("/columns", jwt, h.ListColumns)

	api.GET("/board", jwt, h.GetBoard)
	api.GET("/activity", jwt, h.RecentActivity)

	// AI assistant, limited per user (not per IP)
	aiRL := middleware.RedisRateLimit("ai", limits.AI, limits.AIWindow, middleware.ByUser)
	ai := api.Group("/ai", jwt)
	{
		ai.GET("/status", h.AIStatus)
		ai.POST("/title", aiRL, h.AITitle)
		ai.POST("/description", aiRL, h.AIDescription)
		ai.POST("/suggestions", aiRL, h.AISuggestions)
		ai.POST("/categorize", aiRL, h.AICategorize)
		ai.POST("/tasks", aiRL, h.AICreateTask)
	}
}
