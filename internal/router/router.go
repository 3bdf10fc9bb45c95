// Package router wires the HTTP routes onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking-session/internal/config"
	"github.com/iliyamo/cinema-booking-session/internal/handler"
	"github.com/iliyamo/cinema-booking-session/internal/metrics"
	"github.com/iliyamo/cinema-booking-session/internal/middleware"
)

// Deps carries everything the routes need.  DraftHandler may be nil when
// the draft store is disabled; its route is then not mounted.
type Deps struct {
	Config    config.Config
	Metrics   *metrics.Metrics
	Redis     *redis.Client
	Showtimes *handler.ShowtimeHandler
	Sessions  *handler.SessionHandler
	Drafts    *handler.DraftHandler
}

// New builds the echo instance with all middleware and routes mounted.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.Instrument(d.Metrics))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	// Showtime listing is public; responses are cached briefly because the
	// listing changes far less often than seat inventory.
	showtimes := v1.Group("/showtimes")
	if d.Redis != nil {
		showtimes.Use(middleware.CacheGET(config.LoadCacheConfig(), d.Redis))
	}
	showtimes.GET("", d.Showtimes.List)

	auth := v1.Group("", middleware.JWTAuth(d.Config.JWTSecret))
	if d.Redis != nil {
		auth.Use(middleware.RateLimit(config.LoadRateLimitConfig(), d.Redis))
	}

	auth.POST("/sessions", d.Sessions.Create)
	auth.GET("/sessions/:id", d.Sessions.Get)
	auth.POST("/sessions/:id/toggle", d.Sessions.Toggle)
	auth.POST("/sessions/:id/clear", d.Sessions.Clear)
	auth.POST("/sessions/:id/refresh", d.Sessions.Refresh)
	auth.POST("/sessions/:id/checkout", d.Sessions.Checkout)
	auth.POST("/sessions/:id/submit", d.Sessions.Submit)
	auth.DELETE("/sessions/:id", d.Sessions.Abandon)

	if d.Drafts != nil {
		auth.GET("/my-drafts", d.Drafts.List)
	}

	return e
}
