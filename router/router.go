package router

import (
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	"github.com/NomadCrew/nomad-weather/handlers"
	"github.com/NomadCrew/nomad-weather/internal/websocket"
	"github.com/NomadCrew/nomad-weather/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config        *config.Config
	ScreenHandler *handlers.ScreenHandler
	HealthHandler *handlers.HealthHandler
	WSHandler     *websocket.Handler
	// Redis backs the screen action rate limiter. Nil disables it.
	Redis    redis.Cmdable
	Gatherer prometheus.Gatherer
	Logger   *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Config.IsDevelopment() {
		r.Use(gin.Logger())
	}

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil && deps.Logger != nil {
		deps.Logger.Warnw("Invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		screenRoutes := v1.Group("/screen")
		{
			screenRoutes.GET("", deps.ScreenHandler.GetScreenHandler)
			if deps.WSHandler != nil {
				screenRoutes.GET("/ws", deps.WSHandler.HandleWebSocket)
			}

			actions := screenRoutes.Group("")
			if deps.Redis != nil {
				window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
				actions.Use(middleware.ScreenRateLimiter(deps.Redis, deps.Config.RateLimit.ScreenRequestsPerMinute, window))
			}
			actions.POST("/search", deps.ScreenHandler.SearchHandler)
			actions.POST("/refresh", deps.ScreenHandler.RefreshHandler)
			actions.POST("/retry", deps.ScreenHandler.RetryHandler)
			actions.POST("/unit/toggle", deps.ScreenHandler.ToggleUnitHandler)
		}
	}

	return r
}
