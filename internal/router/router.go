// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/config"
	"github.com/iliyamo/tent-booking/internal/handler"
	"github.com/iliyamo/tent-booking/internal/metrics"
	"github.com/iliyamo/tent-booking/internal/middleware"
	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/service"
)

// Deps is everything New needs.  Redis, DB and Metrics may be nil.
type Deps struct {
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Bookings  *handler.BookingHandler
	JWTSecret string

	DB          handler.Pinger
	Redis       *redis.Client
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	Metrics     *metrics.Metrics
	MetricsPath string
	Log         *zap.Logger
}

// New builds the Echo server with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(d.Log.Named("http")))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log.Named("ratelimit")))

	RegisterRoutes(e, d)
	RegisterAuth(e, d.Auth, d.JWTSecret)
	RegisterCatalog(e, d.Catalog, middleware.NewRedisCache(d.Cache, d.Redis, d.Log.Named("cache")))
	RegisterBookings(e, d.Bookings, d.JWTSecret)
	return e
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, echo.WrapHandler(d.Metrics.Handler()))
	}
}

// RegisterAuth registers /api/auth.  Register, login, token, refresh and
// logout are public; profile and the user list need an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/token", a.Token)
	g.POST("/token/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := g.Group("", middleware.JWTAuth(jwtSecret))
	auth.GET("/profile", a.Profile)
	auth.PUT("/profile", a.UpdateProfile)
	auth.PATCH("/profile", a.UpdateProfile)
	auth.GET("/users", a.Users, middleware.RequireRole(service.MsgUsersAdmin, model.RoleAdmin))
}

// RegisterCatalog registers the public tent type endpoints behind the
// response cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/tent-types", cache)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// RegisterBookings registers /api/bookings.  Every route needs an access
// token; create is limited to customers and stats to admins.  The service
// repeats both checks.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/api/bookings", middleware.JWTAuth(jwtSecret))
	customersOnly := middleware.RequireRole(service.MsgCustomersOnly, model.RoleCustomer)

	g.GET("", h.List)
	g.POST("", h.Create, customersOnly)
	g.POST("/create", h.Create, customersOnly)
	g.GET("/stats", h.Stats, middleware.RequireRole(service.MsgStatsAdmin, model.RoleAdmin))
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.PUT("/:id/update", h.Update)
	g.PATCH("/:id/update", h.Update)
}
